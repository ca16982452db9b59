package realtime

import (
	"context"

	"firebase.google.com/go/db"
	"github.com/viant/firebridge/sdk"
	"github.com/viant/firebridge/shared"
)

type query struct {
	db   *Database
	path string
	spec sdk.QuerySpec
}

func (q *query) with(spec sdk.QuerySpec) sdk.Query {
	return &query{db: q.db, path: q.path, spec: spec}
}

func (q *query) Ref() sdk.Reference    { return q.db.ref(q.path) }
func (q *query) Spec() sdk.QuerySpec   { return q.spec }
func (q *query) OrderByKey() sdk.Query { return q.with(q.spec.WithOrder(sdk.OrderByKey, "")) }
func (q *query) OrderByValue() sdk.Query {
	return q.with(q.spec.WithOrder(sdk.OrderByValue, ""))
}

func (q *query) OrderByChild(path string) sdk.Query {
	return q.with(q.spec.WithOrder(sdk.OrderByChild, path))
}

// OrderByPriority is not expressible over REST
func (q *query) OrderByPriority() sdk.Query {
	return q.with(q.spec.Invalid("orderByPriority is not supported by this database client"))
}

func (q *query) StartAt(value shared.Value, key ...string) sdk.Query {
	return q.with(q.spec.WithStart(sdk.BoundOf(value, key...)))
}

func (q *query) EndAt(value shared.Value, key ...string) sdk.Query {
	return q.with(q.spec.WithEnd(sdk.BoundOf(value, key...)))
}

func (q *query) EqualTo(value shared.Value, key ...string) sdk.Query {
	return q.with(q.spec.WithEqual(sdk.BoundOf(value, key...)))
}

func (q *query) LimitToFirst(limit int) sdk.Query { return q.with(q.spec.WithLimit(limit, false)) }
func (q *query) LimitToLast(limit int) sdk.Query  { return q.with(q.spec.WithLimit(limit, true)) }

func (q *query) Observe(kind sdk.EventKind, handler sdk.Handler) sdk.Registration {
	return q.db.observe(q, kind, handler)
}

// Get reads the query once, offline reads are served from the last known value when persistence is enabled
func (q *query) Get(ctx context.Context) (*sdk.Snapshot, error) {
	if err := q.spec.Err(); err != nil {
		return nil, err
	}
	online, err := q.db.touch()
	if err != nil {
		return nil, err
	}
	if !online {
		node, ok := q.db.cached(q.path)
		if !ok {
			return nil, sdk.NewDatabaseError(sdk.DatabaseDisconnected, "the operation had to be aborted due to a network disconnect")
		}
		return sdk.NewSnapshot(q.Ref(), q.spec.Filter(node), q.spec), nil
	}
	node, err := q.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return sdk.NewSnapshot(q.Ref(), node, q.spec), nil
}

// fetch reads location or query result, plain locations are remembered for offline reads
func (q *query) fetch(ctx context.Context) (shared.Value, error) {
	ref := q.db.client.NewRef(q.path)
	if q.spec.IsDefault() {
		var raw interface{}
		if err := ref.Get(ctx, &raw); err != nil {
			return shared.Null(), databaseError(err)
		}
		node, err := shared.ValueOf(raw)
		if err != nil {
			return shared.Null(), err
		}
		q.db.remember(q.path, node)
		return node, nil
	}
	server := serverQuery(ref, q.spec)
	nodes, err := server.GetOrdered(ctx)
	if err != nil {
		return shared.Null(), databaseError(err)
	}
	entries := make([]sdk.Entry, 0, len(nodes))
	for _, item := range nodes {
		var raw interface{}
		if err := item.Unmarshal(&raw); err != nil {
			return shared.Null(), err
		}
		node, err := shared.ValueOf(raw)
		if err != nil {
			return shared.Null(), err
		}
		entries = append(entries, sdk.Entry{Key: item.Key(), Node: node})
	}
	return q.spec.Filter(sdk.FromEntries(entries, shared.Null())), nil
}

// serverQuery maps spec onto a REST query; bounds with keys and limits next to them are applied locally
func serverQuery(ref *db.Ref, spec sdk.QuerySpec) *db.Query {
	var ret *db.Query
	switch spec.Order {
	case sdk.OrderByChild:
		ret = ref.OrderByChild(spec.ChildPath)
	case sdk.OrderByValue:
		ret = ref.OrderByValue()
	default:
		ret = ref.OrderByKey()
	}
	exact := true
	switch {
	case spec.IsEqual():
		exact = !spec.Start.HasKey
		ret = ret.EqualTo(spec.Start.Value.Interface())
	default:
		if spec.Start != nil {
			exact = exact && !spec.Start.HasKey
			ret = ret.StartAt(spec.Start.Value.Interface())
		}
		if spec.End != nil {
			exact = exact && !spec.End.HasKey
			ret = ret.EndAt(spec.End.Value.Interface())
		}
	}
	if spec.HasLimit() && exact {
		if spec.FromLast {
			ret = ret.LimitToLast(spec.Limit)
		} else {
			ret = ret.LimitToFirst(spec.Limit)
		}
	}
	return ret
}

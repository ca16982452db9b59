package database

import (
	"context"

	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/sdk"
)

// cache stores snapshot under a fresh handle and describes it
func (m *Module) cache(snapshot *sdk.Snapshot) *Snapshot {
	handle := m.snapshots.Put(snapshot)
	return describeSnapshot(snapshot, handle)
}

func (m *Module) snapshot(args bridge.Args) (*sdk.Snapshot, error) {
	handle, err := args.String(0)
	if err != nil {
		return nil, err
	}
	snapshot, ok := m.snapshots.Get(handle)
	if !ok {
		return nil, bridge.SnapshotNotFound()
	}
	return snapshot, nil
}

func (m *Module) snapshotValue(ctx context.Context, args bridge.Args) (interface{}, error) {
	snapshot, err := m.snapshot(args)
	if err != nil {
		return nil, err
	}
	return snapshot.Value().Interface(), nil
}

func (m *Module) snapshotExportValue(ctx context.Context, args bridge.Args) (interface{}, error) {
	snapshot, err := m.snapshot(args)
	if err != nil {
		return nil, err
	}
	return snapshot.ExportValue().Interface(), nil
}

func (m *Module) snapshotChild(ctx context.Context, args bridge.Args) (interface{}, error) {
	snapshot, err := m.snapshot(args)
	if err != nil {
		return nil, err
	}
	path, err := args.String(1)
	if err != nil {
		return nil, err
	}
	return m.cache(snapshot.Child(path)), nil
}

func (m *Module) snapshotChildren(ctx context.Context, args bridge.Args) (interface{}, error) {
	snapshot, err := m.snapshot(args)
	if err != nil {
		return nil, err
	}
	children := snapshot.Children()
	result := make([]*Snapshot, 0, len(children))
	for _, child := range children {
		result = append(result, m.cache(child))
	}
	return result, nil
}

func (m *Module) snapshotHasChild(ctx context.Context, args bridge.Args) (interface{}, error) {
	snapshot, err := m.snapshot(args)
	if err != nil {
		return nil, err
	}
	path, err := args.String(1)
	if err != nil {
		return nil, err
	}
	return snapshot.HasChild(path), nil
}

func (m *Module) snapshotKey(ctx context.Context, args bridge.Args) (interface{}, error) {
	snapshot, err := m.snapshot(args)
	if err != nil {
		return nil, err
	}
	return describeRef(snapshot.Ref()).Key, nil
}

// releaseSnapshot drops snapshot, releasing an unknown handle is a no-op
func (m *Module) releaseSnapshot(ctx context.Context, args bridge.Args) (interface{}, error) {
	handle, err := args.String(0)
	if err != nil {
		return nil, err
	}
	m.snapshots.Delete(handle)
	return nil, nil
}

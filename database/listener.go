package database

import (
	"context"

	"github.com/viant/firebridge/bridge"
	"github.com/viant/firebridge/sdk"
)

func (m *Module) on(ctx context.Context, args bridge.Args) (interface{}, error) {
	return m.subscribe(ctx, args, false)
}

func (m *Module) once(ctx context.Context, args bridge.Args) (interface{}, error) {
	return m.subscribe(ctx, args, true)
}

// subscribe registers a listener, args: appName, locationUrl, query descriptor, event type
func (m *Module) subscribe(ctx context.Context, args bridge.Args, once bool) (interface{}, error) {
	eventType, err := args.String(3)
	if err != nil {
		return nil, err
	}
	kind, err := sdk.ParseEventKind(eventType)
	if err != nil {
		return nil, bridge.UnknownEvent(eventType)
	}
	query, err := m.query(ctx, args, 2)
	if err != nil {
		return nil, err
	}
	sub := &subscription{handle: bridge.NewHandle(), kind: kind, once: once}
	m.listeners.Insert(sub.handle, sub)
	sub.mu.Lock()
	defer sub.mu.Unlock()
	sub.registration = query.Observe(kind, sdk.Handler{
		OnEvent: func(event sdk.Event) {
			m.deliver(sub, event)
		},
		OnCancel: func(err error) {
			m.cancelled(sub, err)
		},
	})
	m.logger.Debug().Str("handle", sub.handle).Str("event", eventType).Str("location", query.Ref().URL()).Bool("once", once).Msg("subscribed")
	return sub.handle, nil
}

func (m *Module) deliver(sub *subscription, event sdk.Event) {
	sub.mu.Lock()
	if !sub.begin() {
		sub.mu.Unlock()
		return
	}
	notification := &Notification{
		Handle:    sub.handle,
		EventType: string(event.Kind),
		Snapshot:  m.cache(event.Snapshot),
	}
	if event.PrevKey != "" {
		notification.PreviousChildKey = event.PrevKey
	}
	m.emitter.Emit(sub.handle, notification)
	var registration sdk.Registration
	if sub.once {
		registration = sub.detach()
	}
	sub.mu.Unlock()
	if registration != nil {
		m.listeners.Delete(sub.handle)
		registration.Remove()
	}
}

func (m *Module) cancelled(sub *subscription, err error) {
	sub.mu.Lock()
	if sub.cancelled {
		sub.mu.Unlock()
		return
	}
	sub.cancelled = true
	sub.detach()
	rejection := bridge.Reject(err)
	m.emitter.Emit(sub.handle, &Notification{
		Handle:    sub.handle,
		EventType: string(sub.kind),
		Error:     &NotificationError{Code: rejection.Code, Message: rejection.Message},
	})
	sub.mu.Unlock()
	m.listeners.Delete(sub.handle)
	m.logger.Warn().Str("handle", sub.handle).Str("code", rejection.Code).Msg("listener cancelled")
}

// off removes listener, unknown handles are ignored
func (m *Module) off(ctx context.Context, args bridge.Args) (interface{}, error) {
	handle, err := args.String(0)
	if err != nil {
		return nil, err
	}
	sub, ok := m.listeners.Delete(handle)
	if !ok {
		return nil, nil
	}
	if registration := sub.cancel(); registration != nil {
		registration.Remove()
	}
	m.logger.Debug().Str("handle", handle).Msg("unsubscribed")
	return nil, nil
}

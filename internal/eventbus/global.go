package eventbus

import "context"

var globalBus EventBus

// Init устанавливает глобальную шину жизненного цикла миров.
func Init(bus EventBus) { globalBus = bus }

// Publish отправляет событие в глобальную шину, если она инициализирована.
// До инициализации публикация — no-op: компоненты не обязаны знать,
// поднята ли шина.
func Publish(ctx context.Context, ev *Envelope) error {
	if globalBus == nil {
		return nil
	}
	return globalBus.Publish(ctx, ev)
}

// Subscribe подписывается на события глобальной шины.
func Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	if globalBus == nil {
		return noopSub{}, nil
	}
	return globalBus.Subscribe(ctx, f, h)
}

type noopSub struct{}

func (noopSub) Unsubscribe() {}

package aspect

import "context"

// Container fans a single marker's call out to several handlers, in
// registration order.
type Container struct {
	handlers []Handler
}

// Register appends handler. Nil handlers are ignored.
func (c *Container) Register(handler Handler) {
	if handler == nil {
		return
	}
	c.handlers = append(c.handlers, handler)
}

func (c *Container) Len() int {
	return len(c.handlers)
}

// Handler returns a handler running a snapshot of the registered handlers.
// The first failing handler stops the fan-out.
func (c *Container) Handler() Handler {
	handlers := make([]Handler, len(c.handlers))
	copy(handlers, c.handlers)
	return func(ctx context.Context, jp JoinPoint) error {
		for _, handler := range handlers {
			if err := handler(ctx, jp); err != nil {
				return err
			}
		}
		return nil
	}
}

// ChainAround nests around handlers. The first one is the outermost.
func ChainAround(handlers ...AroundHandler) AroundHandler {
	return func(ctx context.Context, jp JoinPoint, proceed Proceed) (any, error) {
		next := proceed
		for i := len(handlers) - 1; i >= 0; i-- {
			handler, inner := handlers[i], next
			next = func(ctx context.Context) (any, error) {
				return handler(ctx, jp, inner)
			}
		}
		return next(ctx)
	}
}

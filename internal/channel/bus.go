package channel

import (
	"sync"
	"time"

	"github.com/genricoloni/queuekiosk/internal/domain"
)

// ReconnectInfo describes a retry handed to the reconnect timer
type ReconnectInfo struct {
	Attempt int
	Delay   time.Duration
}

// Bus is the in-process publish/subscribe surface of a Manager.
// Handlers run on the publishing goroutine in registration order.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	messages map[string]map[uint64]func(domain.Envelope)
	conn     map[uint64]func(bool)
	retries  map[uint64]func(ReconnectInfo)
	order    []uint64
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{
		messages: make(map[string]map[uint64]func(domain.Envelope)),
		conn:     make(map[uint64]func(bool)),
		retries:  make(map[uint64]func(ReconnectInfo)),
	}
}

// OnMessage subscribes fn to frames of msgType
func (b *Bus) OnMessage(msgType string, fn func(domain.Envelope)) func() {
	b.mu.Lock()
	id := b.register()
	if b.messages[msgType] == nil {
		b.messages[msgType] = make(map[uint64]func(domain.Envelope))
	}
	b.messages[msgType][id] = fn
	b.mu.Unlock()

	return b.unsubscriber(func() {
		delete(b.messages[msgType], id)
		if len(b.messages[msgType]) == 0 {
			delete(b.messages, msgType)
		}
	}, id)
}

// OnConnectivity subscribes fn to open/close transitions
func (b *Bus) OnConnectivity(fn func(connected bool)) func() {
	b.mu.Lock()
	id := b.register()
	b.conn[id] = fn
	b.mu.Unlock()

	return b.unsubscriber(func() { delete(b.conn, id) }, id)
}

// OnReconnectScheduled subscribes fn to every retry the scheduler arms
func (b *Bus) OnReconnectScheduled(fn func(ReconnectInfo)) func() {
	b.mu.Lock()
	id := b.register()
	b.retries[id] = fn
	b.mu.Unlock()

	return b.unsubscriber(func() { delete(b.retries, id) }, id)
}

// PublishMessage delivers env to the subscribers of its type.
// Types without subscribers are ignored.
func (b *Bus) PublishMessage(env domain.Envelope) {
	b.mu.RLock()
	subs := b.messages[env.Type]
	fns := make([]func(domain.Envelope), 0, len(subs))
	for _, id := range b.order {
		if fn, ok := subs[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(env)
	}
}

// PublishConnectivity notifies connectivity subscribers
func (b *Bus) PublishConnectivity(connected bool) {
	b.mu.RLock()
	fns := make([]func(bool), 0, len(b.conn))
	for _, id := range b.order {
		if fn, ok := b.conn[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(connected)
	}
}

// PublishReconnect notifies retry subscribers
func (b *Bus) PublishReconnect(info ReconnectInfo) {
	b.mu.RLock()
	fns := make([]func(ReconnectInfo), 0, len(b.retries))
	for _, id := range b.order {
		if fn, ok := b.retries[id]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(info)
	}
}

// register must be called with mu held
func (b *Bus) register() uint64 {
	b.nextID++
	b.order = append(b.order, b.nextID)
	return b.nextID
}

func (b *Bus) unsubscriber(remove func(), id uint64) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			remove()
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/godbus/dbus/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	login1Interface       = "org.freedesktop.login1.Manager"
	prepareForSleepSignal = login1Interface + ".PrepareForSleep"

	networkManagerDest      = "org.freedesktop.NetworkManager"
	networkManagerPath      = "/org/freedesktop/NetworkManager"
	networkManagerState     = networkManagerDest + ".State"
	networkStateChanged     = networkManagerDest + ".StateChanged"
	nmStateConnectedGlobal  = uint32(70)
	screenSaverInterface    = "org.freedesktop.ScreenSaver"
	screenSaverActiveSignal = screenSaverInterface + ".ActiveChanged"
)

// DBusObserver turns desktop D-Bus signals into environment signals:
// resume from suspend (login1), network connectivity (NetworkManager) on
// the system bus, and screen blanking (ScreenSaver) on the session bus.
type DBusObserver struct {
	logger *zap.Logger

	mu      sync.Mutex
	system  DBusClient
	session DBusClient
	connect func() (system, session DBusClient, err error)
}

// NewDBusObserver creates an observer connecting to the real buses
func NewDBusObserver(logger *zap.Logger) *DBusObserver {
	return &DBusObserver{
		logger:  logger,
		connect: connectBuses,
	}
}

// Name implements Observer
func (o *DBusObserver) Name() string {
	return "dbus"
}

// Observe implements Observer. It succeeds as long as one bus is reachable.
func (o *DBusObserver) Observe(ctx context.Context, emit func(Signal)) error {
	o.mu.Lock()
	if o.system == nil && o.session == nil {
		system, session, err := o.connect()
		if system == nil && session == nil {
			o.mu.Unlock()
			return fmt.Errorf("no D-Bus connection available: %w", err)
		}
		if err != nil {
			o.logger.Warn("Partial D-Bus connection", zap.Error(err))
		}
		o.system, o.session = system, session
	}
	system, session := o.system, o.session
	o.mu.Unlock()

	defer o.close()

	signals := make(chan *dbus.Signal, 10)
	watching := 0

	if system != nil {
		if err := o.watchSystem(system, signals); err != nil {
			o.logger.Warn("Failed to watch system bus", zap.Error(err))
		} else {
			watching++
			defer system.RemoveSignal(signals)
			o.emitInitialNetworkState(system, emit)
		}
	}
	if session != nil {
		if err := session.AddMatchSignal(
			dbus.WithMatchInterface(screenSaverInterface),
			dbus.WithMatchMember("ActiveChanged"),
		); err != nil {
			o.logger.Warn("Failed to watch screen saver", zap.Error(err))
		} else {
			watching++
			session.Signal(signals)
			defer session.RemoveSignal(signals)
		}
	}
	if watching == 0 {
		return fmt.Errorf("no D-Bus match rule could be added")
	}

	o.logger.Info("D-Bus observer started", zap.Int("buses", watching))

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("D-Bus observer stopped")
			return ctx.Err()
		case sig := <-signals:
			if sig == nil {
				continue
			}
			if s, ok := o.translate(sig); ok {
				emit(s)
			}
		}
	}
}

func (o *DBusObserver) watchSystem(system DBusClient, signals chan<- *dbus.Signal) error {
	err := multierr.Combine(
		system.AddMatchSignal(
			dbus.WithMatchInterface(login1Interface),
			dbus.WithMatchMember("PrepareForSleep"),
		),
		system.AddMatchSignal(
			dbus.WithMatchInterface(networkManagerDest),
			dbus.WithMatchMember("StateChanged"),
		),
	)
	if err != nil {
		return err
	}
	system.Signal(signals)
	return nil
}

// emitInitialNetworkState reports online when NetworkManager already has connectivity
func (o *DBusObserver) emitInitialNetworkState(system DBusClient, emit func(Signal)) {
	variant, err := system.GetProperty(networkManagerDest, networkManagerPath, networkManagerState)
	if err != nil {
		o.logger.Debug("NetworkManager state unavailable", zap.Error(err))
		return
	}
	if state, ok := variant.Value().(uint32); ok && state == nmStateConnectedGlobal {
		emit(SignalOnline)
	}
}

// translate maps a D-Bus signal to an environment signal
func (o *DBusObserver) translate(sig *dbus.Signal) (Signal, bool) {
	if len(sig.Body) < 1 {
		return 0, false
	}

	switch sig.Name {
	case prepareForSleepSignal:
		sleeping, ok := sig.Body[0].(bool)
		if !ok || sleeping {
			return 0, false
		}
		o.logger.Info("System resumed from sleep")
		return SignalRestored, true

	case networkStateChanged:
		state, ok := sig.Body[0].(uint32)
		if !ok {
			return 0, false
		}
		o.logger.Debug("Network state changed", zap.Uint32("state", state))
		if state == nmStateConnectedGlobal {
			return SignalOnline, true
		}

	case screenSaverActiveSignal:
		active, ok := sig.Body[0].(bool)
		if !ok {
			return 0, false
		}
		if active {
			return SignalHidden, true
		}
		return SignalVisible, true
	}
	return 0, false
}

func (o *DBusObserver) close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, c := range []DBusClient{o.system, o.session} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			o.logger.Warn("Failed to close D-Bus connection", zap.Error(err))
		}
	}
	o.system, o.session = nil, nil
}

func connectBuses() (DBusClient, DBusClient, error) {
	var system, session DBusClient
	var errs error

	if c, err := NewSystemBusClient(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("system bus: %w", err))
	} else {
		system = c
	}
	if c, err := NewSessionBusClient(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("session bus: %w", err))
	} else {
		session = c
	}
	return system, session, errs
}

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/genricoloni/queuekiosk/internal/lifecycle/mocks"
)

func TestDBusObserver_Translate(t *testing.T) {
	obs := NewDBusObserver(zap.NewNop())

	tests := []struct {
		name   string
		signal *dbus.Signal
		want   Signal
		wantOK bool
	}{
		{
			name:   "Resume from sleep",
			signal: &dbus.Signal{Name: prepareForSleepSignal, Body: []interface{}{false}},
			want:   SignalRestored,
			wantOK: true,
		},
		{
			name:   "Going to sleep is ignored",
			signal: &dbus.Signal{Name: prepareForSleepSignal, Body: []interface{}{true}},
		},
		{
			name:   "Global connectivity",
			signal: &dbus.Signal{Name: networkStateChanged, Body: []interface{}{uint32(70)}},
			want:   SignalOnline,
			wantOK: true,
		},
		{
			name:   "Site connectivity is not online",
			signal: &dbus.Signal{Name: networkStateChanged, Body: []interface{}{uint32(60)}},
		},
		{
			name:   "Screen saver on",
			signal: &dbus.Signal{Name: screenSaverActiveSignal, Body: []interface{}{true}},
			want:   SignalHidden,
			wantOK: true,
		},
		{
			name:   "Screen saver off",
			signal: &dbus.Signal{Name: screenSaverActiveSignal, Body: []interface{}{false}},
			want:   SignalVisible,
			wantOK: true,
		},
		{
			name:   "Wrong body type",
			signal: &dbus.Signal{Name: screenSaverActiveSignal, Body: []interface{}{"yes"}},
		},
		{
			name:   "Empty body",
			signal: &dbus.Signal{Name: prepareForSleepSignal},
		},
		{
			name:   "Unrelated signal",
			signal: &dbus.Signal{Name: "org.freedesktop.DBus.NameOwnerChanged", Body: []interface{}{"a", "b", "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := obs.translate(tt.signal)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("signal = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDBusObserver_Observe(t *testing.T) {
	ctrl := gomock.NewController(t)
	system := mocks.NewMockDBusClient(ctrl)
	session := mocks.NewMockDBusClient(ctrl)

	var mu sync.Mutex
	var systemCh, sessionCh chan<- *dbus.Signal
	registered := make(chan struct{}, 2)

	system.EXPECT().AddMatchSignal(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	system.EXPECT().Signal(gomock.Any()).Do(func(ch chan<- *dbus.Signal) {
		mu.Lock()
		systemCh = ch
		mu.Unlock()
		registered <- struct{}{}
	})
	system.EXPECT().GetProperty(networkManagerDest, networkManagerPath, networkManagerState).
		Return(dbus.MakeVariant(uint32(20)), nil)
	system.EXPECT().RemoveSignal(gomock.Any())
	system.EXPECT().Close().Return(nil)

	session.EXPECT().AddMatchSignal(gomock.Any(), gomock.Any()).Return(nil)
	session.EXPECT().Signal(gomock.Any()).Do(func(ch chan<- *dbus.Signal) {
		mu.Lock()
		sessionCh = ch
		mu.Unlock()
		registered <- struct{}{}
	})
	session.EXPECT().RemoveSignal(gomock.Any())
	session.EXPECT().Close().Return(nil)

	obs := NewDBusObserver(zap.NewNop())
	obs.system, obs.session = system, session

	got := make(chan Signal, 4)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- obs.Observe(ctx, func(s Signal) { got <- s }) }()

	for i := 0; i < 2; i++ {
		select {
		case <-registered:
		case <-time.After(time.Second):
			t.Fatal("signal channels not registered")
		}
	}

	mu.Lock()
	systemCh <- &dbus.Signal{Name: prepareForSleepSignal, Body: []interface{}{false}}
	sessionCh <- &dbus.Signal{Name: screenSaverActiveSignal, Body: []interface{}{true}}
	mu.Unlock()

	for _, want := range []Signal{SignalRestored, SignalHidden} {
		select {
		case s := <-got:
			if s != want {
				t.Errorf("signal = %v, want %v", s, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %v", want)
		}
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Observe returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Observe did not return after cancel")
	}
}

func TestDBusObserver_NoBus(t *testing.T) {
	obs := NewDBusObserver(zap.NewNop())
	obs.connect = func() (DBusClient, DBusClient, error) {
		return nil, nil, errors.New("no bus")
	}

	err := obs.Observe(context.Background(), func(Signal) {})
	if err == nil {
		t.Fatal("expected error without any bus")
	}
}

func TestDBusObserver_InitialOnline(t *testing.T) {
	ctrl := gomock.NewController(t)
	system := mocks.NewMockDBusClient(ctrl)

	system.EXPECT().AddMatchSignal(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	system.EXPECT().Signal(gomock.Any())
	system.EXPECT().GetProperty(networkManagerDest, networkManagerPath, networkManagerState).
		Return(dbus.MakeVariant(uint32(70)), nil)
	system.EXPECT().RemoveSignal(gomock.Any())
	system.EXPECT().Close().Return(nil)

	obs := NewDBusObserver(zap.NewNop())
	obs.system = system

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan Signal, 1)
	done := make(chan error, 1)
	go func() { done <- obs.Observe(ctx, func(s Signal) { got <- s }) }()

	select {
	case s := <-got:
		if s != SignalOnline {
			t.Errorf("signal = %v, want online", s)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial online signal")
	}
	cancel()
	<-done
}

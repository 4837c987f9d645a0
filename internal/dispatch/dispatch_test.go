package dispatch

import (
	"testing"
)

func TestRegisterAndFire(t *testing.T) {
	d := New()

	var got []Payload
	d.Register(func(p Payload) {
		got = append(got, p)
	})

	d.Fire(Payload{Action: ActionViewRoom, RoomID: "!a"})
	d.Fire(Payload{Action: ActionViewGroup, RoomID: "+b"})

	if len(got) != 2 {
		t.Fatalf("expected 2 payloads, got %d", len(got))
	}
	if got[0].Action != ActionViewRoom || got[0].RoomID != "!a" {
		t.Errorf("unexpected first payload: %+v", got[0])
	}
	if got[1].Action != ActionViewGroup || got[1].RoomID != "+b" {
		t.Errorf("unexpected second payload: %+v", got[1])
	}
}

func TestRegistrationOrder(t *testing.T) {
	d := New()

	var order []int
	d.Register(func(Payload) { order = append(order, 1) })
	d.Register(func(Payload) { order = append(order, 2) })
	d.Register(func(Payload) { order = append(order, 3) })

	d.Fire(Payload{Action: ActionRoomLoaded})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("expected delivery in registration order, got %v", order)
	}
}

func TestCancel(t *testing.T) {
	d := New()

	count := 0
	reg := d.Register(func(Payload) { count++ })

	d.Fire(Payload{Action: ActionViewRoom})
	reg.Cancel()
	d.Fire(Payload{Action: ActionViewRoom})

	if count != 1 {
		t.Errorf("expected 1 delivery after cancel, got %d", count)
	}
	if d.HandlerCount() != 0 {
		t.Errorf("expected 0 handlers after cancel, got %d", d.HandlerCount())
	}
}

func TestCancelTwice(t *testing.T) {
	d := New()
	reg := d.Register(func(Payload) {})

	reg.Cancel()
	reg.Cancel() // must not panic or remove another handler

	if d.HandlerCount() != 0 {
		t.Errorf("expected 0 handlers, got %d", d.HandlerCount())
	}
}

func TestFireFromHandler(t *testing.T) {
	d := New()

	var actions []Action
	d.Register(func(p Payload) {
		actions = append(actions, p.Action)
		if p.Action == ActionViewRoom {
			d.Fire(Payload{Action: ActionRoomLoaded, RoomID: p.RoomID})
		}
	})

	d.Fire(Payload{Action: ActionViewRoom, RoomID: "!a"})

	if len(actions) != 2 || actions[0] != ActionViewRoom || actions[1] != ActionRoomLoaded {
		t.Errorf("expected nested fire to deliver, got %v", actions)
	}
}

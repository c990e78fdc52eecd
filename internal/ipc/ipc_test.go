package ipc

import (
	"errors"
	"testing"
)

type fakeController struct {
	status    StatusData
	retiled   []int
	setPaused []SetPausedPayload
	reloads   int
	fail      bool
}

func (f *fakeController) Status() StatusData { return f.status }

func (f *fakeController) Retile(workspace int) error {
	if f.fail {
		return errors.New("boom")
	}
	f.retiled = append(f.retiled, workspace)
	return nil
}

func (f *fakeController) SetPaused(workspace int, paused bool) error {
	if f.fail {
		return errors.New("boom")
	}
	f.setPaused = append(f.setPaused, SetPausedPayload{Workspace: workspace, Paused: paused})
	return nil
}

func (f *fakeController) Reload() error {
	if f.fail {
		return errors.New("boom")
	}
	f.reloads++
	return nil
}

func TestClientServerRoundTrip(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	ctrl := &fakeController{
		status: StatusData{
			DaemonState:     "listening",
			ActiveWorkspace: 2,
			Slots: []SlotInfo{
				{Workspace: 1, MediaPath: "/a.mp4", State: "paused"},
				{Workspace: 2, MediaPath: "/b.mp4", State: "playing"},
			},
			UptimeSeconds: 42,
		},
	}

	srv, err := NewServer(ctrl)
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer srv.Stop()

	client := NewClient()

	status, err := client.GetStatus()
	if err != nil {
		t.Fatalf("GetStatus error: %v", err)
	}
	if status.DaemonState != "listening" || status.ActiveWorkspace != 2 {
		t.Fatalf("status = %+v", status)
	}
	if len(status.Slots) != 2 || status.Slots[1].State != "playing" {
		t.Fatalf("slots = %+v", status.Slots)
	}

	if err := client.Retile(3); err != nil {
		t.Fatalf("Retile error: %v", err)
	}
	if len(ctrl.retiled) != 1 || ctrl.retiled[0] != 3 {
		t.Fatalf("retiled = %v", ctrl.retiled)
	}

	if err := client.SetPaused(1, true); err != nil {
		t.Fatalf("SetPaused error: %v", err)
	}
	if len(ctrl.setPaused) != 1 || !ctrl.setPaused[0].Paused {
		t.Fatalf("setPaused = %+v", ctrl.setPaused)
	}

	if err := client.Reload(); err != nil {
		t.Fatalf("Reload error: %v", err)
	}
	if ctrl.reloads != 1 {
		t.Fatalf("reloads = %d", ctrl.reloads)
	}
}

func TestServer_ControllerErrorsBecomeErrorResponses(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())

	srv, err := NewServer(&fakeController{fail: true})
	if err != nil {
		t.Fatalf("NewServer error: %v", err)
	}
	if err := srv.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	defer srv.Stop()

	client := NewClient()
	if err := client.Retile(0); err == nil {
		t.Fatal("expected error from failing controller")
	}
}

func TestParseRequest_Invalid(t *testing.T) {
	if _, err := ParseRequest([]byte("{not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

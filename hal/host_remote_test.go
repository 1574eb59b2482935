package hal

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"stereo/vr"
)

type fakeRemote struct {
	srv *httptest.Server

	mu      sync.Mutex
	conn    *websocket.Conn
	ready   chan struct{}
	got     chan remoteMessage
	exitErr string
	silent  bool
	// respond replaces the default reply to present and exit when set.
	respond func(f *fakeRemote, m remoteMessage)
}

func newFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()
	f := &fakeRemote{ready: make(chan struct{}), got: make(chan remoteMessage, 16)}
	up := websocket.Upgrader{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		f.mu.Lock()
		f.conn = c
		f.mu.Unlock()
		f.write(remoteMessage{
			Type:         msgHello,
			Name:         "Test HMD",
			Capabilities: &remoteCapabilities{CanPresent: true, HasExternalDisplay: true, MaxLayers: 1},
			Stage:        &remoteStage{SizeX: 2, SizeZ: 2, SittingToStanding: []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 1.7, 0, 1}},
			Eyes: []remoteEye{
				{Eye: "left", Offset: []float32{-0.03, 0, 0}, FieldOfView: remoteFOV{45, 45, 40, 50}, RenderWidth: 800, RenderHeight: 900},
				{Eye: "right", Offset: []float32{0.03, 0, 0}, FieldOfView: remoteFOV{45, 45, 50, 40}, RenderWidth: 800, RenderHeight: 900},
			},
		})
		close(f.ready)
		for {
			var m remoteMessage
			if err := c.ReadJSON(&m); err != nil {
				return
			}
			f.mu.Lock()
			silent, exitErr, respond := f.silent, f.exitErr, f.respond
			f.mu.Unlock()
			switch {
			case silent:
			case respond != nil && (m.Type == msgPresent || m.Type == msgExit):
				respond(f, m)
			case m.Type == msgPresent:
				f.write(remoteMessage{Type: msgPresented, ID: m.ID, OK: true})
			case m.Type == msgExit:
				f.write(remoteMessage{Type: msgExited, ID: m.ID, OK: exitErr == "", Error: exitErr})
			}
			f.got <- m
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRemote) url() string { return "ws" + strings.TrimPrefix(f.srv.URL, "http") }

func (f *fakeRemote) write(m remoteMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conn.WriteJSON(m)
}

// drop closes the server side of the connection without a close frame.
func (f *fakeRemote) drop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conn.UnderlyingConn().Close()
}

func (f *fakeRemote) next(t *testing.T) remoteMessage {
	t.Helper()
	select {
	case m := <-f.got:
		return m
	case <-time.After(2 * time.Second):
		t.Fatalf("remote received nothing")
		return remoteMessage{}
	}
}

func dialFake(t *testing.T, f *fakeRemote, timeout time.Duration) (*remoteDisplay, chan vr.Notification) {
	t.Helper()
	notes := make(chan vr.Notification, 8)
	log := &hostLogger{w: &bytes.Buffer{}}
	d, err := dialRemote(context.Background(), f.url(), timeout, log, func(n vr.Notification) { notes <- n })
	if err != nil {
		t.Fatalf("dialRemote: %v", err)
	}
	t.Cleanup(func() { d.close() })
	<-f.ready
	return d, notes
}

func waitNote(t *testing.T, ch chan vr.Notification, want vr.NotificationKind) {
	t.Helper()
	select {
	case n := <-ch:
		if n.Kind != want {
			t.Fatalf("notification = %v, want %v", n.Kind, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no %v notification", want)
	}
}

func TestRemoteHello(t *testing.T) {
	d, _ := dialFake(t, newFakeRemote(t), time.Second)

	if d.Name() != "Test HMD" || !d.Capabilities().CanPresent {
		t.Fatalf("name=%q caps=%+v", d.Name(), d.Capabilities())
	}
	st := d.StageParameters()
	if st == nil || st.SittingToStanding[13] != 1.7 {
		t.Fatalf("stage = %+v", st)
	}
	r := d.EyeParameters(vr.EyeRight)
	if r.Offset[0] != 0.03 || r.FieldOfView.Left != 50 || r.RenderWidth != 800 {
		t.Fatalf("right eye = %+v", r)
	}
}

func TestRemotePresentRoundTrip(t *testing.T) {
	f := newFakeRemote(t)
	d, notes := dialFake(t, f, time.Second)

	if err := d.RequestPresent([]vr.Layer{{}}); err != nil {
		t.Fatalf("RequestPresent: %v", err)
	}
	if m := f.next(t); m.Type != msgPresent {
		t.Fatalf("remote got %q, want present", m.Type)
	}
	if !d.IsPresenting() {
		t.Fatalf("IsPresenting() = false after present")
	}
	waitNote(t, notes, vr.NotifyPresentChange)

	// A redundant presentchange from the remote must not notify again.
	f.write(remoteMessage{Type: msgPresentChange, Presenting: true})
	f.write(remoteMessage{Type: msgDeactivate})
	waitNote(t, notes, vr.NotifyDeactivate)
}

func TestRemoteExitRejected(t *testing.T) {
	f := newFakeRemote(t)
	f.exitErr = "busy"
	d, _ := dialFake(t, f, time.Second)

	if err := d.RequestPresent([]vr.Layer{{}}); err != nil {
		t.Fatalf("RequestPresent: %v", err)
	}
	err := d.ExitPresent()
	if err == nil || !strings.Contains(err.Error(), "busy") {
		t.Fatalf("ExitPresent() = %v, want busy", err)
	}
	if !d.IsPresenting() {
		t.Fatalf("rejected exit changed presenting state")
	}
}

func TestRemoteRequestTimeout(t *testing.T) {
	f := newFakeRemote(t)
	f.silent = true
	d, _ := dialFake(t, f, 50*time.Millisecond)

	if err := d.RequestPresent([]vr.Layer{{}}); !errors.Is(err, ErrRequestTimeout) {
		t.Fatalf("RequestPresent() = %v, want ErrRequestTimeout", err)
	}
	if d.IsPresenting() {
		t.Fatalf("timed out present changed state")
	}
}

func TestRemotePosePacesFrames(t *testing.T) {
	f := newFakeRemote(t)
	d, _ := dialFake(t, f, time.Second)
	now := time.Now()

	runs := 0
	cb := func() { runs++ }
	d.RequestAnimationFrame(cb)
	if n := d.pumpFrames(now, nil); n != 1 {
		t.Fatalf("first pump = %d, want 1", n)
	}
	d.RequestAnimationFrame(cb)
	if n := d.pumpFrames(now, nil); n != 0 {
		t.Fatalf("pump without a new pose = %d, want 0", n)
	}

	f.write(remoteMessage{Type: msgPose, Orientation: []float32{0, 0, 0, 1}, Position: []float32{0, 1, 0}})
	deadline := time.Now().Add(2 * time.Second)
	for d.Pose().Position == nil {
		if time.Now().After(deadline) {
			t.Fatalf("pose never arrived")
		}
		time.Sleep(time.Millisecond)
	}
	if n := d.pumpFrames(now, nil); n != 1 {
		t.Fatalf("pump after pose = %d, want 1", n)
	}
	if p := d.Pose(); (*p.Position)[1] != 1 || p.Orientation.W != 1 {
		t.Fatalf("pose = %+v", p)
	}
}

func TestRemoteSubmitAndReset(t *testing.T) {
	f := newFakeRemote(t)
	d, _ := dialFake(t, f, time.Second)

	d.SubmitFrame(vr.Pose{})
	d.SubmitFrame(vr.Pose{})
	d.ResetPose()

	if m := f.next(t); m.Type != msgSubmit || m.Frame != 1 {
		t.Fatalf("got %+v, want submit frame 1", m)
	}
	if m := f.next(t); m.Frame != 2 {
		t.Fatalf("got %+v, want submit frame 2", m)
	}
	if m := f.next(t); m.Type != msgReset {
		t.Fatalf("got %q, want reset", m.Type)
	}
}

func TestRemoteClosedRejectsRequests(t *testing.T) {
	f := newFakeRemote(t)
	d, _ := dialFake(t, f, time.Second)
	d.close()
	if err := d.RequestPresent([]vr.Layer{{}}); !errors.Is(err, ErrRemoteClosed) {
		t.Fatalf("RequestPresent() after close = %v, want ErrRemoteClosed", err)
	}
}

func TestPlatformRemoteDialFailure(t *testing.T) {
	h, _, _ := newTestHAL(t, Config{Display: DisplayRemote, RemoteURL: "ws://127.0.0.1:1/none", RemoteTimeout: 200 * time.Millisecond})
	if _, err := h.platform.Displays(context.Background()); err == nil {
		t.Fatalf("Displays() with unreachable remote succeeded")
	}
}

func TestRemoteIgnoresLateReplyToTimedOutRequest(t *testing.T) {
	f := newFakeRemote(t)
	late := make(chan struct{})
	f.respond = func(f *fakeRemote, m remoteMessage) {
		if m.ID == 1 {
			go func() {
				time.Sleep(150 * time.Millisecond)
				f.write(remoteMessage{Type: msgPresented, ID: m.ID, Error: "late reject"})
				close(late)
			}()
			return
		}
		<-late
		f.write(remoteMessage{Type: msgPresented, ID: m.ID, OK: true})
	}
	d, _ := dialFake(t, f, 100*time.Millisecond)

	if err := d.RequestPresent([]vr.Layer{{}}); !errors.Is(err, ErrRequestTimeout) {
		t.Fatalf("first RequestPresent() = %v, want ErrRequestTimeout", err)
	}
	d.timeout = time.Second
	if err := d.RequestPresent([]vr.Layer{{}}); err != nil {
		t.Fatalf("second RequestPresent() = %v, want accepted", err)
	}
	if !d.IsPresenting() {
		t.Fatalf("IsPresenting() = false after accepted present")
	}
}

func TestRemoteDropEndsPresentation(t *testing.T) {
	f := newFakeRemote(t)
	d, notes := dialFake(t, f, time.Second)

	if err := d.RequestPresent([]vr.Layer{{}}); err != nil {
		t.Fatalf("RequestPresent: %v", err)
	}
	waitNote(t, notes, vr.NotifyPresentChange)

	f.drop()
	waitNote(t, notes, vr.NotifyPresentChange)
	if d.IsPresenting() {
		t.Fatalf("IsPresenting() = true after the remote dropped")
	}
	select {
	case <-d.closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("display not marked closed after drop")
	}
	if err := d.close(); err != nil {
		t.Fatalf("close() after drop = %v", err)
	}
}

func TestPlatformStepDuringPendingDial(t *testing.T) {
	up := websocket.Upgrader{}
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer c.Close()
		<-release
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	h, _, _ := newTestHAL(t, Config{Display: DisplayRemote, RemoteURL: url, RemoteTimeout: 1500 * time.Millisecond})
	done := make(chan error, 1)
	go func() {
		_, err := h.platform.Displays(context.Background())
		done <- err
	}()
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	h.step()
	h.platform.Emit(vr.NotifyActivate)
	if el := time.Since(start); el > 200*time.Millisecond {
		t.Fatalf("host step took %v while a remote dial was pending", el)
	}
	if err := <-done; err == nil {
		t.Fatalf("Displays() without a hello succeeded")
	}
}

package hal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"

	"stereo/vr"
)

// remoteMessage is the JSON envelope exchanged with a remote display.
type remoteMessage struct {
	Type string `json:"type"`
	// ID tags present and exit requests; presented and exited echo it.
	ID uint64 `json:"id,omitempty"`

	// hello
	Name         string              `json:"name,omitempty"`
	Capabilities *remoteCapabilities `json:"capabilities,omitempty"`
	Stage        *remoteStage        `json:"stage,omitempty"`
	Eyes         []remoteEye         `json:"eyes,omitempty"`

	// pose: orientation is x,y,z,w.
	Orientation []float32 `json:"orientation,omitempty"`
	Position    []float32 `json:"position,omitempty"`

	// presented, exited, presentchange
	OK         bool   `json:"ok,omitempty"`
	Error      string `json:"error,omitempty"`
	Presenting bool   `json:"presenting,omitempty"`

	// submit
	Frame uint64 `json:"frame,omitempty"`
}

type remoteCapabilities struct {
	HasPosition        bool `json:"hasPosition"`
	HasExternalDisplay bool `json:"hasExternalDisplay"`
	CanPresent         bool `json:"canPresent"`
	MaxLayers          int  `json:"maxLayers"`
}

type remoteStage struct {
	SizeX float32 `json:"sizeX"`
	SizeZ float32 `json:"sizeZ"`
	// SittingToStanding is column-major.
	SittingToStanding []float32 `json:"sittingToStanding"`
}

type remoteFOV struct {
	Up    float32 `json:"up"`
	Down  float32 `json:"down"`
	Left  float32 `json:"left"`
	Right float32 `json:"right"`
}

type remoteEye struct {
	Eye          string    `json:"eye"`
	Offset       []float32 `json:"offset"`
	FieldOfView  remoteFOV `json:"fieldOfView"`
	RenderWidth  int       `json:"renderWidth"`
	RenderHeight int       `json:"renderHeight"`
}

const (
	msgHello         = "hello"
	msgPose          = "pose"
	msgPresented     = "presented"
	msgExited        = "exited"
	msgPresentChange = "presentchange"
	msgActivate      = "activate"
	msgDeactivate    = "deactivate"

	msgPresent = "present"
	msgExit    = "exit"
	msgSubmit  = "submit"
	msgReset   = "reset"
)

// remoteFrameFallback paces frames when the remote stops streaming poses.
const remoteFrameFallback = 100 * time.Millisecond

type remoteDisplay struct {
	pacer

	log     Logger
	notify  func(vr.Notification)
	timeout time.Duration

	conn    *websocket.Conn
	writeMu sync.Mutex

	// set by hello, read-only afterwards
	name  string
	caps  vr.Capabilities
	stage *vr.StageParameters
	eyes  [2]vr.EyeParameters

	reqMu   sync.Mutex
	nextID  uint64
	replies chan remoteMessage

	mu         sync.Mutex
	waitID     uint64
	pose       vr.Pose
	poseSeq    uint64
	frameSeq   uint64
	lastFrame  time.Time
	presenting bool
	frame      uint64
	writeErr   error

	closeOnce sync.Once
	closed    chan struct{}
}

// dialRemote connects to a remote display and waits for its hello.
func dialRemote(ctx context.Context, url string, timeout time.Duration, log Logger, notify func(vr.Notification)) (*remoteDisplay, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("hal: remote: dial %s: %w", url, err)
	}

	d := &remoteDisplay{
		log:     log,
		notify:  notify,
		timeout: timeout,
		conn:    conn,
		replies: make(chan remoteMessage, 1),
		closed:  make(chan struct{}),
	}

	conn.SetReadDeadline(time.Now().Add(timeout))
	var hello remoteMessage
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return nil, fmt.Errorf("hal: remote: read hello: %w", err)
	}
	if hello.Type != msgHello {
		conn.Close()
		return nil, fmt.Errorf("hal: remote: first message %q, want %q", hello.Type, msgHello)
	}
	conn.SetReadDeadline(time.Time{})
	d.applyHello(hello)

	go d.readLoop()
	return d, nil
}

func (d *remoteDisplay) applyHello(m remoteMessage) {
	d.name = m.Name
	if d.name == "" {
		d.name = "Remote HMD"
	}
	if c := m.Capabilities; c != nil {
		d.caps = vr.Capabilities{
			HasPosition:        c.HasPosition,
			HasExternalDisplay: c.HasExternalDisplay,
			CanPresent:         c.CanPresent,
			MaxLayers:          c.MaxLayers,
		}
	}
	if s := m.Stage; s != nil && len(s.SittingToStanding) == 16 {
		st := &vr.StageParameters{SizeX: s.SizeX, SizeZ: s.SizeZ}
		copy(st.SittingToStanding[:], s.SittingToStanding)
		d.stage = st
	}
	for i, e := range m.Eyes {
		eye := vr.Eye(i)
		switch e.Eye {
		case "left":
			eye = vr.EyeLeft
		case "right":
			eye = vr.EyeRight
		}
		if eye > vr.EyeRight {
			continue
		}
		p := vr.EyeParameters{
			FieldOfView: vr.FieldOfView{
				Up: e.FieldOfView.Up, Down: e.FieldOfView.Down,
				Left: e.FieldOfView.Left, Right: e.FieldOfView.Right,
			},
			RenderWidth:  e.RenderWidth,
			RenderHeight: e.RenderHeight,
		}
		if len(e.Offset) == 3 {
			p.Offset = mgl32.Vec3{e.Offset[0], e.Offset[1], e.Offset[2]}
		}
		d.eyes[eye] = p
	}
}

// readLoop runs until the connection fails. A dropped remote is no longer presenting.
func (d *remoteDisplay) readLoop() {
	for {
		var m remoteMessage
		if err := d.conn.ReadJSON(&m); err != nil {
			select {
			case <-d.closed:
			default:
				d.log.WriteLineString(fmt.Sprintf("hal: remote: read: %v", err))
			}
			d.shutdown()
			d.setPresenting(false)
			return
		}
		d.handle(m)
	}
}

func (d *remoteDisplay) handle(m remoteMessage) {
	switch m.Type {
	case msgPose:
		var p vr.Pose
		if len(m.Orientation) == 4 {
			q := mgl32.Quat{W: m.Orientation[3], V: mgl32.Vec3{m.Orientation[0], m.Orientation[1], m.Orientation[2]}}
			p.Orientation = &q
		}
		if len(m.Position) == 3 {
			v := mgl32.Vec3{m.Position[0], m.Position[1], m.Position[2]}
			p.Position = &v
		}
		d.mu.Lock()
		d.pose = p
		d.poseSeq++
		d.mu.Unlock()
	case msgPresented, msgExited:
		d.mu.Lock()
		waiting := m.ID != 0 && m.ID == d.waitID
		d.mu.Unlock()
		if !waiting {
			d.log.WriteLineString(fmt.Sprintf("hal: remote: dropped stale %s (id %d)", m.Type, m.ID))
			return
		}
		select {
		case d.replies <- m:
		default:
			d.log.WriteLineString("hal: remote: unexpected " + m.Type)
		}
	case msgPresentChange:
		d.setPresenting(m.Presenting)
	case msgActivate:
		d.emit(vr.NotifyActivate)
	case msgDeactivate:
		d.emit(vr.NotifyDeactivate)
	default:
		d.log.WriteLineString(fmt.Sprintf("hal: remote: unknown message %q", m.Type))
	}
}

func (d *remoteDisplay) emit(kind vr.NotificationKind) {
	if d.notify != nil {
		d.notify(vr.Notification{Kind: kind, Display: d})
	}
}

func (d *remoteDisplay) setPresenting(on bool) {
	d.mu.Lock()
	changed := d.presenting != on
	d.presenting = on
	d.mu.Unlock()
	if changed {
		d.emit(vr.NotifyPresentChange)
	}
}

func (d *remoteDisplay) send(m remoteMessage) error {
	select {
	case <-d.closed:
		return ErrRemoteClosed
	default:
	}
	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	d.conn.SetWriteDeadline(time.Now().Add(d.timeout))
	if err := d.conn.WriteJSON(m); err != nil {
		return fmt.Errorf("hal: remote: write %s: %w", m.Type, err)
	}
	return nil
}

// request sends m under a fresh id and waits for the reply of type want with that id.
func (d *remoteDisplay) request(m remoteMessage, want string) error {
	d.reqMu.Lock()
	defer d.reqMu.Unlock()

	d.nextID++
	m.ID = d.nextID
	d.mu.Lock()
	d.waitID = m.ID
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		d.waitID = 0
		d.mu.Unlock()
	}()
	// A reply that raced the previous timeout may still be buffered.
	select {
	case <-d.replies:
	default:
	}

	if err := d.send(m); err != nil {
		return err
	}
	t := time.NewTimer(d.timeout)
	defer t.Stop()
	for {
		select {
		case r := <-d.replies:
			if r.Type != want || r.ID != m.ID {
				continue
			}
			if !r.OK {
				if r.Error == "" {
					r.Error = "rejected"
				}
				return fmt.Errorf("hal: remote: %s: %s", m.Type, r.Error)
			}
			return nil
		case <-t.C:
			return fmt.Errorf("hal: remote: %s: %w", m.Type, ErrRequestTimeout)
		case <-d.closed:
			return ErrRemoteClosed
		}
	}
}

func (d *remoteDisplay) Name() string                         { return d.name }
func (d *remoteDisplay) Capabilities() vr.Capabilities        { return d.caps }
func (d *remoteDisplay) StageParameters() *vr.StageParameters { return d.stage }

func (d *remoteDisplay) IsPresenting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.presenting
}

func (d *remoteDisplay) RequestPresent(layers []vr.Layer) error {
	if !d.caps.CanPresent {
		return ErrCannotPresent
	}
	if err := d.request(remoteMessage{Type: msgPresent}, msgPresented); err != nil {
		return err
	}
	d.setPresenting(true)
	return nil
}

func (d *remoteDisplay) ExitPresent() error {
	if err := d.request(remoteMessage{Type: msgExit}, msgExited); err != nil {
		return err
	}
	d.setPresenting(false)
	return nil
}

func (d *remoteDisplay) Pose() vr.Pose {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pose
}

func (d *remoteDisplay) EyeParameters(eye vr.Eye) vr.EyeParameters { return d.eyes[eye] }

// SubmitFrame tells the remote which frame finished. Write errors are logged once.
func (d *remoteDisplay) SubmitFrame(vr.Pose) {
	d.mu.Lock()
	d.frame++
	n := d.frame
	d.mu.Unlock()
	if err := d.send(remoteMessage{Type: msgSubmit, Frame: n}); err != nil {
		d.noteWriteErr(err)
	}
}

func (d *remoteDisplay) ResetPose() {
	if err := d.send(remoteMessage{Type: msgReset}); err != nil {
		d.noteWriteErr(err)
	}
}

func (d *remoteDisplay) noteWriteErr(err error) {
	d.mu.Lock()
	first := d.writeErr == nil
	d.writeErr = err
	d.mu.Unlock()
	if first {
		d.log.WriteLineString(fmt.Sprintf("hal: remote: %v", err))
	}
}

// due reports whether a new pose arrived since the last frame.
func (d *remoteDisplay) due(now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.poseSeq != d.frameSeq || now.Sub(d.lastFrame) >= remoteFrameFallback
}

func (d *remoteDisplay) pumpFrames(now time.Time, before func()) int {
	if !d.hasPending() || !d.due(now) {
		return 0
	}
	d.mu.Lock()
	d.frameSeq = d.poseSeq
	d.lastFrame = now
	d.mu.Unlock()
	return d.pump(before)
}

// shutdown marks the display closed and releases the socket. Safe to call twice.
func (d *remoteDisplay) shutdown() (err error) {
	d.closeOnce.Do(func() {
		close(d.closed)
		err = d.conn.Close()
	})
	return err
}

func (d *remoteDisplay) close() error {
	select {
	case <-d.closed:
		return nil
	default:
	}
	d.writeMu.Lock()
	err := d.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	d.writeMu.Unlock()
	if errors.Is(err, websocket.ErrCloseSent) {
		err = nil
	}
	if cerr := d.shutdown(); err == nil {
		err = cerr
	}
	return err
}

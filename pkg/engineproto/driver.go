package engineproto

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seekerror/logw"
)

// HandshakeTimeout is the deadline for uci/uciok and ucinewgame/readyok
// round trips (spec §4.2's "initialization timeout constant").
const HandshakeTimeout = 60 * time.Second

// StallDrainTimeout bounds how long the executor waits for a bestmove after
// sending stop to a timed-out engine (spec §4.3, "bounded (>=10s) deadline").
const StallDrainTimeout = 10 * time.Second

// State is the Driver's position in its handshake/think state machine.
type State int

const (
	StateSpawned State = iota
	StateHandshaking
	StateReady
	StateThinking
	StateDead
)

func (s State) String() string {
	switch s {
	case StateSpawned:
		return "spawned"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateThinking:
		return "thinking"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Probe is the three-valued outcome of probe_ready and wait_bestmove.
type Probe int

const (
	ProbeOK Probe = iota
	ProbeTimeout
	ProbeErr
)

// Driver speaks the UCI-like protocol on top of a Transport for exactly one
// engine across its lifetime (possibly many games, if restart==keep).
type Driver struct {
	transport *Transport
	name      string

	state State

	idName   string
	idAuthor string
	options  map[string]OptionDescriptor
}

// NewDriver wraps t with protocol-level behavior. t must already be spawned.
func NewDriver(t *Transport) *Driver {
	return &Driver{
		transport: t,
		name:      t.Name(),
		state:     StateSpawned,
		options:   make(map[string]OptionDescriptor),
	}
}

func (d *Driver) State() State   { return d.state }
func (d *Driver) Name() string   { return d.name }
func (d *Driver) IDName() string { return d.idName }

// Start performs the uci/uciok handshake, capturing option defaults and the
// id name/author lines along the way.
func (d *Driver) Start(ctx context.Context) error {
	d.state = StateHandshaking
	if err := d.transport.Write("uci"); err != nil {
		d.state = StateDead
		return err
	}

	lines, status := d.transport.ReadUntil(ctx, "uciok", HandshakeTimeout)
	if status != ReadOK {
		d.state = StateDead
		return fmt.Errorf("engineproto: %s: handshake failed (%v)", d.name, status)
	}

	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "id name "):
			d.idName = strings.TrimPrefix(l, "id name ")
		case strings.HasPrefix(l, "id author "):
			d.idAuthor = strings.TrimPrefix(l, "id author ")
		case strings.HasPrefix(l, "option "):
			if desc, ok := ParseOptionLine(l); ok {
				d.options[desc.Name] = desc
			}
		}
	}

	d.state = StateReady
	logw.Infof(ctx, "engineproto: %s: handshake complete (id=%q options=%d)", d.name, d.idName, len(d.options))
	return nil
}

// NewGame sends ucinewgame followed by an isready/readyok round trip.
func (d *Driver) NewGame(ctx context.Context) bool {
	if err := d.transport.Write("ucinewgame"); err != nil {
		d.state = StateDead
		return false
	}
	if err := d.transport.Write("isready"); err != nil {
		d.state = StateDead
		return false
	}
	_, status := d.transport.ReadUntil(ctx, "readyok", HandshakeTimeout)
	if status != ReadOK {
		if status == ReadErr {
			d.state = StateDead
		}
		return false
	}
	d.state = StateReady
	return true
}

// SetOption validates value against the option's reported descriptor (when
// one was captured during handshake), then sends setoption and records the
// applied value.
func (d *Driver) SetOption(name, value string) error {
	if desc, ok := d.options[name]; ok {
		if err := desc.Validate(value); err != nil {
			return err
		}
	}
	if err := d.transport.Write(fmt.Sprintf("setoption name %s value %s", name, value)); err != nil {
		d.state = StateDead
		return err
	}
	if desc, ok := d.options[name]; ok {
		desc.Default = value
		d.options[name] = desc
	}
	return nil
}

// ApplyConfig sends every configured option in order, forces UCI_Chess960 on
// for the chess960 variant, and then performs NewGame.
func (d *Driver) ApplyConfig(ctx context.Context, options [][2]string, chess960 bool) bool {
	for _, kv := range options {
		if err := d.SetOption(kv[0], kv[1]); err != nil {
			return false
		}
	}
	if chess960 {
		if err := d.SetOption("UCI_Chess960", "true"); err != nil {
			return false
		}
	}
	return d.NewGame(ctx)
}

// Position sends `position startpos moves ...` or `position fen <fen>
// moves ...` depending on startPos.
func (d *Driver) Position(startPos string, moves []string) error {
	var b strings.Builder
	if startPos == "" || startPos == "startpos" {
		b.WriteString("position startpos")
	} else {
		b.WriteString("position fen ")
		b.WriteString(startPos)
	}
	if len(moves) > 0 {
		b.WriteString(" moves ")
		b.WriteString(strings.Join(moves, " "))
	}
	if err := d.transport.Write(b.String()); err != nil {
		d.state = StateDead
		return err
	}
	return nil
}

// GoLimits is the subset of TimeControl information Go needs to build the
// `go` command; it is deliberately independent of pkg/clock so engineproto
// has no import cycle back into the match layer.
//
// Clock fields are named by board color (White/Black), matching the UCI
// wtime/btime/winc/binc wire fields directly -- wtime is always White's
// remaining time regardless of which side is actually on move.
type GoLimits struct {
	Nodes   int64
	Plies   int
	FixedMS int64

	WhiteTimeMS int64
	WhiteIncMS  int64
	MovesToGo   int
	BlackTimeMS int64
	BlackIncMS  int64

	HasWhiteClock bool
	HasBlackClock bool
}

// Go sends the `go` command per the field-emission rules in spec §4.2.
func (d *Driver) Go(limits GoLimits) error {
	var parts []string
	parts = append(parts, "go")

	switch {
	case limits.Nodes > 0:
		parts = append(parts, "nodes", strconv.FormatInt(limits.Nodes, 10))
	case limits.Plies > 0:
		parts = append(parts, "depth", strconv.Itoa(limits.Plies))
	case limits.FixedMS > 0:
		parts = append(parts, "movetime", strconv.FormatInt(limits.FixedMS, 10))
	default:
		if limits.HasWhiteClock {
			parts = append(parts, "wtime", strconv.FormatInt(limits.WhiteTimeMS, 10))
		}
		if limits.HasBlackClock {
			parts = append(parts, "btime", strconv.FormatInt(limits.BlackTimeMS, 10))
		}
		if limits.WhiteIncMS > 0 {
			parts = append(parts, "winc", strconv.FormatInt(limits.WhiteIncMS, 10))
		}
		if limits.BlackIncMS > 0 {
			parts = append(parts, "binc", strconv.FormatInt(limits.BlackIncMS, 10))
		}
		if limits.MovesToGo > 0 {
			parts = append(parts, "movestogo", strconv.Itoa(limits.MovesToGo))
		}
	}

	d.state = StateThinking
	if err := d.transport.Write(strings.Join(parts, " ")); err != nil {
		d.state = StateDead
		return err
	}
	return nil
}

// BestMove is the parsed result of wait_bestmove.
type BestMove struct {
	Move    string
	Ponder  string
	Info    Info
	HasInfo bool
}

// WaitBestMove reads until a `bestmove` line, tracking the last info line
// that carried a score (and either no multipv field or multipv 1), per
// spec §4.2.
func (d *Driver) WaitBestMove(ctx context.Context, deadline time.Duration) (BestMove, Probe) {
	lines, status := d.transport.ReadUntil(ctx, "bestmove", deadline)
	switch status {
	case ReadTimeout:
		return BestMove{}, ProbeTimeout
	case ReadErr:
		d.state = StateDead
		return BestMove{}, ProbeErr
	}

	var bm BestMove
	var lastScored Info
	haveScored := false

	for _, l := range lines {
		if info, ok := ParseInfoLine(l); ok {
			if info.HasScore && info.MultiPV <= 1 {
				lastScored = info
				haveScored = true
			}
			continue
		}
		if strings.HasPrefix(l, "bestmove") {
			fields := strings.Fields(l)
			if len(fields) >= 2 {
				bm.Move = fields[1]
			}
			if len(fields) >= 4 && fields[2] == "ponder" {
				bm.Ponder = fields[3]
			}
		}
	}

	if haveScored {
		bm.Info = lastScored
		bm.HasInfo = true
	}

	d.state = StateReady

	if bm.Move == "" {
		return bm, ProbeErr
	}
	return bm, ProbeOK
}

// ProbeReady sends isready and waits for readyok within deadline.
func (d *Driver) ProbeReady(ctx context.Context, deadline time.Duration) Probe {
	if err := d.transport.Write("isready"); err != nil {
		d.state = StateDead
		return ProbeErr
	}
	_, status := d.transport.ReadUntil(ctx, "readyok", deadline)
	switch status {
	case ReadOK:
		return ProbeOK
	case ReadTimeout:
		return ProbeTimeout
	default:
		d.state = StateDead
		return ProbeErr
	}
}

// Stop sends the `stop` command, used to recall a thinking engine before a
// timeout-classified game ends so it does not keep searching indefinitely.
func (d *Driver) Stop() error {
	return d.transport.Write("stop")
}

// Quit sends `quit` and terminates the underlying transport.
func (d *Driver) Quit(killTimeout time.Duration) {
	_ = d.transport.Write("quit")
	d.transport.Terminate(killTimeout)
	d.state = StateDead
}

// Alive reports whether the underlying transport's process is still alive.
func (d *Driver) Alive() bool {
	return d.transport.Alive() && d.state != StateDead
}

// SetAffinityCPUs pins the underlying process to cpus (see Transport.SetAffinity).
func (d *Driver) SetAffinityCPUs(cpus []int) error {
	return d.transport.SetAffinity(cpus)
}

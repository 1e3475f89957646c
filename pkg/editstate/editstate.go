// Package editstate tracks which editing tool is active and which hotspot
// it is aimed at.
//
// Edit mode and the fine-grained action are one tagged state rather than
// two flags: [ModeOff] is simply another mode, so "editing disabled but a
// tool selected" is unrepresentable. Transitions are operator-driven and
// deliberately loose; the only hard rules are that entering [ModeEdit]
// names its subject hotspot, leaving it clears the subject, and turning
// editing off resets everything.
package editstate

import "github.com/matzehuels/atlas/pkg/errors"

// Mode is the single edit state. Every value other than ModeOff implies
// editing is enabled.
type Mode int

const (
	// ModeOff disables editing entirely; gestures only navigate.
	ModeOff Mode = iota
	// ModeIdle has editing enabled with no tool selected.
	ModeIdle
	// ModeDraw interprets drag gestures as new hotspot rectangles. It is
	// the only mode that does; everywhere else drags are ignored.
	ModeDraw
	// ModeSelectDelete interprets hotspot clicks as delete selections.
	ModeSelectDelete
	// ModeSelectEdit interprets hotspot clicks as edit selections.
	ModeSelectEdit
	// ModeEdit has a modal edit in progress for one hotspot. Enter it with
	// BeginEdit, never SetMode.
	ModeEdit
	// ModeChangeImage waits for a new background image for the current map.
	ModeChangeImage
)

var modeNames = map[Mode]string{
	ModeOff:          "off",
	ModeIdle:         "idle",
	ModeDraw:         "draw",
	ModeSelectDelete: "select-delete",
	ModeSelectEdit:   "select-edit",
	ModeEdit:         "edit",
	ModeChangeImage:  "change-image",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Editing reports whether editing is enabled at all.
func (m Mode) Editing() bool { return m != ModeOff }

// Machine is the edit-action state machine. The zero value is ModeOff and
// ready to use.
type Machine struct {
	mode          Mode
	editSubject   string
	pendingDelete string
	returnTo      Mode
}

// New returns a machine with editing off.
func New() *Machine { return &Machine{} }

// Mode returns the current state.
func (m *Machine) Mode() Mode { return m.mode }

// DrawingEnabled reports whether drag gestures should become hotspots.
func (m *Machine) DrawingEnabled() bool { return m.mode == ModeDraw }

// EditSubject returns the hotspot id under modal edit, or "".
func (m *Machine) EditSubject() string { return m.editSubject }

// PendingDelete returns the hotspot id awaiting delete confirmation, or "".
func (m *Machine) PendingDelete() string { return m.pendingDelete }

// SetEnabled toggles editing globally. Turning it off forces the mode back
// to ModeOff and clears any pending edit or delete selection; turning it
// on lands in ModeIdle. Re-enabling never restores the previous tool.
func (m *Machine) SetEnabled(on bool) {
	if !on {
		m.mode = ModeOff
		m.clearSubjects()
		return
	}
	if m.mode == ModeOff {
		m.mode = ModeIdle
	}
}

// SetMode selects an editing tool. Any tool can follow any other; the two
// exceptions are ModeEdit, which must be entered through BeginEdit so its
// subject is recorded, and ModeOff, which goes through SetEnabled. Fails
// while editing is disabled.
//
// Leaving ModeEdit this way behaves like a cancel: the subject is cleared.
// Switching tools always clears a pending delete selection.
func (m *Machine) SetMode(mode Mode) error {
	if m.mode == ModeOff {
		return errors.New(errors.ErrCodeInvalidInput, "editing is disabled")
	}
	switch mode {
	case ModeOff:
		return errors.New(errors.ErrCodeInvalidInput, "disable editing with SetEnabled")
	case ModeEdit:
		return errors.New(errors.ErrCodeInvalidInput, "enter edit with BeginEdit")
	case ModeIdle, ModeDraw, ModeSelectDelete, ModeSelectEdit, ModeChangeImage:
		m.mode = mode
		m.clearSubjects()
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown edit mode %d", int(mode))
	}
}

// BeginEdit opens a modal edit for the given hotspot. Remembers whether it
// was reached from ModeSelectEdit so EndEdit can return there.
func (m *Machine) BeginEdit(hotspotID string) error {
	if m.mode == ModeOff {
		return errors.New(errors.ErrCodeInvalidInput, "editing is disabled")
	}
	if err := errors.ValidateHotspotID(hotspotID); err != nil {
		return err
	}
	if m.mode == ModeSelectEdit {
		m.returnTo = ModeSelectEdit
	} else {
		m.returnTo = ModeIdle
	}
	m.mode = ModeEdit
	m.editSubject = hotspotID
	m.pendingDelete = ""
	return nil
}

// EndEdit closes the modal edit (commit and cancel look the same to the
// machine), clears the subject and returns to ModeSelectEdit when the edit
// started from a selection, otherwise ModeIdle.
func (m *Machine) EndEdit() {
	if m.mode != ModeEdit {
		return
	}
	m.mode = m.returnTo
	m.editSubject = ""
	m.returnTo = ModeOff
}

// MarkForDelete records a hotspot as awaiting delete confirmation.
func (m *Machine) MarkForDelete(hotspotID string) error {
	if m.mode == ModeOff {
		return errors.New(errors.ErrCodeInvalidInput, "editing is disabled")
	}
	if err := errors.ValidateHotspotID(hotspotID); err != nil {
		return err
	}
	m.pendingDelete = hotspotID
	return nil
}

// ClearPending drops the pending delete selection, typically after the
// confirmation dialog closes.
func (m *Machine) ClearPending() { m.pendingDelete = "" }

// Reset returns the machine to ModeOff with no subjects. Called when the
// document is replaced wholesale.
func (m *Machine) Reset() {
	m.mode = ModeOff
	m.clearSubjects()
}

func (m *Machine) clearSubjects() {
	m.editSubject = ""
	m.pendingDelete = ""
	m.returnTo = ModeOff
}

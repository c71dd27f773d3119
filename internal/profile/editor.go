package profile

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dukerupert/artesania/internal/domain"
)

var (
	ErrNotEditing     = errors.New("profile is not being edited")
	ErrAlreadyEditing = errors.New("profile is already being edited")
	ErrNoProfile      = errors.New("no profile loaded")
)

// Mode names the editor state.
type Mode string

const (
	ModeEmpty   Mode = ""
	ModeViewing Mode = "viewing"
	ModeEditing Mode = "editing"
)

// State is either Viewing or Editing.
type State interface {
	Mode() Mode
}

// Viewing shows the committed profile.
type Viewing struct {
	Committed domain.UserProfile
}

func (Viewing) Mode() Mode { return ModeViewing }

// Editing holds the committed profile and the draft being edited.
type Editing struct {
	Committed domain.UserProfile
	Draft     domain.UserProfile
}

func (Editing) Mode() Mode { return ModeEditing }

// Editor drives the profile page:
//
//	Viewing --Edit--> Editing --Save--> Viewing (draft committed)
//	                  Editing --Cancel--> Viewing (draft dropped)
//
// The zero value has no profile.
type Editor struct {
	state State
}

// State returns the current state, or nil before a profile is loaded.
func (e *Editor) State() State {
	return e.state
}

// Mode returns the current mode.
func (e *Editor) Mode() Mode {
	if e.state == nil {
		return ModeEmpty
	}
	return e.state.Mode()
}

// Editing reports whether a draft is open.
func (e *Editor) Editing() bool {
	return e.Mode() == ModeEditing
}

// Load replaces the committed profile and discards any draft.
func (e *Editor) Load(p domain.UserProfile) {
	e.state = Viewing{Committed: p}
}

// Clear forgets the profile.
func (e *Editor) Clear() {
	e.state = nil
}

// Committed returns the last committed profile.
func (e *Editor) Committed() (domain.UserProfile, bool) {
	switch s := e.state.(type) {
	case Viewing:
		return s.Committed, true
	case Editing:
		return s.Committed, true
	default:
		return domain.UserProfile{}, false
	}
}

// Displayed is what the page shows: the draft while editing, otherwise the
// committed profile.
func (e *Editor) Displayed() (domain.UserProfile, bool) {
	if s, ok := e.state.(Editing); ok {
		return s.Draft, true
	}
	return e.Committed()
}

// Edit opens a draft copied from the committed profile.
func (e *Editor) Edit() error {
	switch s := e.state.(type) {
	case Viewing:
		e.state = Editing{Committed: s.Committed, Draft: s.Committed}
		return nil
	case Editing:
		return ErrAlreadyEditing
	default:
		return ErrNoProfile
	}
}

// Change updates one field of the draft.
func (e *Editor) Change(field, value string) error {
	s, ok := e.state.(Editing)
	if !ok {
		return ErrNotEditing
	}
	if err := ApplyField(&s.Draft, field, value); err != nil {
		return err
	}
	e.state = s
	return nil
}

// Cancel drops the draft.
func (e *Editor) Cancel() error {
	s, ok := e.state.(Editing)
	if !ok {
		return ErrNotEditing
	}
	e.state = Viewing{Committed: s.Committed}
	return nil
}

// Save commits the draft and returns the new committed profile.
func (e *Editor) Save() (domain.UserProfile, error) {
	s, ok := e.state.(Editing)
	if !ok {
		return domain.UserProfile{}, ErrNotEditing
	}
	e.state = Viewing{Committed: s.Draft}
	return s.Draft, nil
}

type editorJSON struct {
	Mode      Mode                `json:"mode"`
	Committed *domain.UserProfile `json:"committed,omitempty"`
	Draft     *domain.UserProfile `json:"draft,omitempty"`
}

func (e Editor) MarshalJSON() ([]byte, error) {
	var v editorJSON
	switch s := e.state.(type) {
	case Viewing:
		v = editorJSON{Mode: ModeViewing, Committed: &s.Committed}
	case Editing:
		v = editorJSON{Mode: ModeEditing, Committed: &s.Committed, Draft: &s.Draft}
	}
	return json.Marshal(v)
}

func (e *Editor) UnmarshalJSON(data []byte) error {
	var v editorJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	switch v.Mode {
	case ModeEmpty:
		e.state = nil
	case ModeViewing:
		if v.Committed == nil {
			return fmt.Errorf("profile editor: viewing state without profile")
		}
		e.state = Viewing{Committed: *v.Committed}
	case ModeEditing:
		if v.Committed == nil || v.Draft == nil {
			return fmt.Errorf("profile editor: editing state without profile or draft")
		}
		e.state = Editing{Committed: *v.Committed, Draft: *v.Draft}
	default:
		return fmt.Errorf("profile editor: unknown mode %q", v.Mode)
	}
	return nil
}

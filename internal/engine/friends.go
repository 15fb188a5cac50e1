package engine

import (
	"context"
	"strings"

	"github.com/wabdoteth/sappy-care/internal/storage"
)

func (s *Service) friends() (storage.FriendRepo, error) {
	f := s.store.Repos().Friends
	if f == nil {
		return nil, ErrUnsupported
	}
	return f, nil
}

// FriendCode returns this companion's shareable code.
func (s *Service) FriendCode(ctx context.Context) (string, error) {
	var code string
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		if r.Friends == nil {
			return ErrUnsupported
		}
		var err error
		code, err = r.Friends.GetFriendCode(ctx)
		return err
	})
	return code, err
}

// AddFriend links a friend by code. Adding the same code twice returns the
// existing friend.
func (s *Service) AddFriend(ctx context.Context, code, displayName string) (*storage.Friend, error) {
	code = storage.NormalizeFriendCode(code)
	if code == "" {
		return nil, ValidationError{Field: "friend code", Reason: "must not be empty"}
	}
	var out *storage.Friend
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		if r.Friends == nil {
			return ErrUnsupported
		}
		own, err := r.Friends.GetFriendCode(ctx)
		if err != nil {
			return err
		}
		if own == code {
			return ValidationError{Field: "friend code", Reason: "cannot add your own code"}
		}
		out, err = r.Friends.AddFriend(ctx, storage.FriendInput{FriendCode: code, DisplayName: strings.TrimSpace(displayName)})
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) ListFriends(ctx context.Context) ([]storage.Friend, error) {
	f, err := s.friends()
	if err != nil {
		return nil, err
	}
	return f.ListFriends(ctx)
}

// SendSupportNote records an outgoing note to a friend.
func (s *Service) SendSupportNote(ctx context.Context, friendID, message string) (*storage.SupportNote, error) {
	return s.addNote(ctx, friendID, message, storage.NoteOutgoing)
}

// ReceiveSupportNote records a note that arrived from a friend.
func (s *Service) ReceiveSupportNote(ctx context.Context, friendID, message string) (*storage.SupportNote, error) {
	return s.addNote(ctx, friendID, message, storage.NoteIncoming)
}

func (s *Service) addNote(ctx context.Context, friendID, message string, dir storage.NoteDirection) (*storage.SupportNote, error) {
	message = strings.TrimSpace(message)
	if err := checkText("message", &message, true); err != nil {
		return nil, err
	}
	var out *storage.SupportNote
	err := s.store.Atomic(ctx, func(r storage.Repos) error {
		if r.Friends == nil {
			return ErrUnsupported
		}
		f, err := r.Friends.GetFriend(ctx, friendID)
		if err != nil {
			return err
		}
		if f == nil {
			return NotFoundError{Entity: "friend", ID: friendID}
		}
		out, err = r.Friends.AddSupportNote(ctx, storage.SupportNoteInput{FriendID: f.ID, Direction: dir, Message: message})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Debug("support note stored", "friend", friendID, "direction", dir)
	return out, nil
}

// SupportNotes lists notes newest first. An empty friendID lists every note.
func (s *Service) SupportNotes(ctx context.Context, friendID string, limit int) ([]storage.SupportNote, error) {
	f, err := s.friends()
	if err != nil {
		return nil, err
	}
	return f.ListSupportNotes(ctx, storage.SupportNoteFilter{FriendID: friendID, Limit: limit})
}

package service

import (
	"fmt"
	"time"

	"friendnet/internal/model"
	"friendnet/internal/repository"
	"friendnet/pkg/cache"
	"friendnet/pkg/logger"

	"go.uber.org/zap"
)

// RelationState is the relationship of an ordered (viewer, other) pair
// as seen by the viewer.
type RelationState string

const (
	StateNone      RelationState = "none"
	StateOutgoing  RelationState = "outgoing"
	StateIncoming  RelationState = "incoming"
	StateFriend    RelationState = "friend"
	StateDismissed RelationState = "dismissed"
)

// RequestView is one pending request with the counterparty attached.
type RequestView struct {
	ID        uint        `json:"id"`
	User      UserSnippet `json:"user"`
	Message   string      `json:"message,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// RequestsView groups pending requests by direction.
type RequestsView struct {
	Incoming []RequestView `json:"incoming"`
	Outgoing []RequestView `json:"outgoing"`
}

// RelationshipService is the state machine over friend relationships.
// It is stateless; every transition happens inside one store
// transaction so concurrent, partially-overlapping calls can never
// observe or produce a half-applied transition.
type RelationshipService struct {
	relationships RelationshipStore
	graph         GraphStore
	users         UserStore
}

// invalidateViewers drops the cached suggestion and insight state of
// every viewer a transition touched. Tests swap it to record the IDs.
var invalidateViewers = cache.InvalidateViewer

// NewRelationshipService creates a RelationshipService.
func NewRelationshipService(relationships RelationshipStore, graph GraphStore, users UserStore) *RelationshipService {
	return &RelationshipService{relationships: relationships, graph: graph, users: users}
}

// SendRequest sends a friend request from viewer to target.
//
// The opposite-direction check runs inside the same transaction as the
// write: when target already has a pending request to viewer, the call
// auto-accepts it and creates the friendship instead of stacking a
// second request. Resending an existing request is a no-op.
func (s *RelationshipService) SendRequest(viewerID, targetID uint, message string) (RelationState, error) {
	if targetID == 0 {
		return StateNone, fmt.Errorf("%w: target is required", ErrInvalidInput)
	}
	if viewerID == targetID {
		return StateNone, fmt.Errorf("%w: cannot send a request to yourself", ErrInvalidInput)
	}
	if _, err := s.users.GetByID(targetID); err != nil {
		return StateNone, fmt.Errorf("%w: user %d", ErrNotFound, targetID)
	}

	state := StateNone
	err := s.relationships.InTx(func(tx repository.RelationshipTx) error {
		friends, err := tx.AreFriends(viewerID, targetID)
		if err != nil {
			return err
		}
		if friends {
			return fmt.Errorf("%w: already friends", ErrConflict)
		}

		// Mutual request: the target asked first, so connect now.
		incoming, err := tx.LockRequestBetween(targetID, viewerID)
		if err != nil {
			return err
		}
		if incoming != nil {
			if err := tx.DeleteRequest(incoming.ID); err != nil {
				return err
			}
			if err := tx.CreateFriendshipPair(viewerID, targetID); err != nil {
				return err
			}
			state = StateFriend
			return nil
		}

		outgoing, err := tx.LockRequestBetween(viewerID, targetID)
		if err != nil {
			return err
		}
		if outgoing != nil {
			state = StateOutgoing
			return nil
		}

		req := &model.FriendRequest{
			SenderID:  viewerID,
			TargetID:  targetID,
			Message:   message,
			CreatedAt: time.Now(),
		}
		if err := tx.CreateRequest(req); err != nil {
			return err
		}
		state = StateOutgoing
		return nil
	})
	if err != nil {
		return StateNone, err
	}

	if state == StateFriend {
		logger.Info("mutual request auto-accepted",
			zap.Uint("viewer_id", viewerID),
			zap.Uint("target_id", targetID),
		)
	}
	invalidateViewers(viewerID, targetID)
	return state, nil
}

// Accept accepts an incoming request addressed to the viewer, deleting
// the request and creating both friendship directions atomically.
func (s *RelationshipService) Accept(viewerID, requestID uint) (RelationState, error) {
	var senderID uint
	err := s.relationships.InTx(func(tx repository.RelationshipTx) error {
		req, err := tx.LockRequestByID(requestID)
		if err != nil {
			return err
		}
		if req == nil || req.TargetID != viewerID {
			return fmt.Errorf("%w: request %d", ErrNotFound, requestID)
		}
		senderID = req.SenderID
		if err := tx.DeleteRequest(req.ID); err != nil {
			return err
		}
		return tx.CreateFriendshipPair(viewerID, req.SenderID)
	})
	if err != nil {
		return StateNone, err
	}
	// The sender's derived state changed too; their cached
	// suggestions must not keep offering the new friend.
	invalidateViewers(viewerID, senderID)
	return StateFriend, nil
}

// Reject deletes an incoming request and dismisses the sender so they
// stop reappearing among the viewer's suggestions. Dismissals do not
// expire.
func (s *RelationshipService) Reject(viewerID, requestID uint) (RelationState, error) {
	var senderID uint
	err := s.relationships.InTx(func(tx repository.RelationshipTx) error {
		req, err := tx.LockRequestByID(requestID)
		if err != nil {
			return err
		}
		if req == nil || req.TargetID != viewerID {
			return fmt.Errorf("%w: request %d", ErrNotFound, requestID)
		}
		senderID = req.SenderID
		if err := tx.DeleteRequest(req.ID); err != nil {
			return err
		}
		return tx.CreateDismissal(viewerID, req.SenderID)
	})
	if err != nil {
		return StateNone, err
	}
	invalidateViewers(viewerID, senderID)
	return StateDismissed, nil
}

// Cancel withdraws an outgoing request owned by the viewer.
func (s *RelationshipService) Cancel(viewerID, requestID uint) (RelationState, error) {
	var targetID uint
	err := s.relationships.InTx(func(tx repository.RelationshipTx) error {
		req, err := tx.LockRequestByID(requestID)
		if err != nil {
			return err
		}
		if req == nil || req.SenderID != viewerID {
			return fmt.Errorf("%w: request %d", ErrNotFound, requestID)
		}
		targetID = req.TargetID
		return tx.DeleteRequest(req.ID)
	})
	if err != nil {
		return StateNone, err
	}
	invalidateViewers(viewerID, targetID)
	return StateNone, nil
}

// Dismiss suppresses a candidate from the viewer's future suggestions.
// Idempotent: repeated calls are no-ops.
func (s *RelationshipService) Dismiss(viewerID, targetID uint) (RelationState, error) {
	if targetID == 0 {
		return StateNone, fmt.Errorf("%w: target is required", ErrInvalidInput)
	}
	if viewerID == targetID {
		return StateNone, fmt.Errorf("%w: cannot dismiss yourself", ErrInvalidInput)
	}
	if _, err := s.users.GetByID(targetID); err != nil {
		return StateNone, fmt.Errorf("%w: user %d", ErrNotFound, targetID)
	}
	if err := s.relationships.CreateDismissal(viewerID, targetID); err != nil {
		return StateNone, err
	}
	invalidateViewers(viewerID)
	return StateDismissed, nil
}

// ListFriends returns the viewer's friends.
func (s *RelationshipService) ListFriends(viewerID uint) ([]*model.User, error) {
	ids, err := s.graph.FriendIDs(viewerID)
	if err != nil {
		return nil, unavailable("friend ids", err)
	}
	users, err := s.users.UsersByIDs(ids)
	if err != nil {
		return nil, unavailable("users", err)
	}
	return users, nil
}

// ListRequests returns the viewer's pending requests in both
// directions, with counterparties attached.
func (s *RelationshipService) ListRequests(viewerID uint) (*RequestsView, error) {
	incoming, err := s.relationships.ListIncoming(viewerID)
	if err != nil {
		return nil, unavailable("incoming requests", err)
	}
	outgoing, err := s.relationships.ListOutgoing(viewerID)
	if err != nil {
		return nil, unavailable("outgoing requests", err)
	}

	ids := make([]uint, 0, len(incoming)+len(outgoing))
	for _, req := range incoming {
		ids = append(ids, req.SenderID)
	}
	for _, req := range outgoing {
		ids = append(ids, req.TargetID)
	}
	users, err := s.users.UsersByIDs(ids)
	if err != nil {
		return nil, unavailable("users", err)
	}
	snippets := snippetsByID(users)

	view := &RequestsView{
		Incoming: make([]RequestView, 0, len(incoming)),
		Outgoing: make([]RequestView, 0, len(outgoing)),
	}
	for _, req := range incoming {
		view.Incoming = append(view.Incoming, RequestView{
			ID:        req.ID,
			User:      snippets[req.SenderID],
			Message:   req.Message,
			CreatedAt: req.CreatedAt,
		})
	}
	for _, req := range outgoing {
		view.Outgoing = append(view.Outgoing, RequestView{
			ID:        req.ID,
			User:      snippets[req.TargetID],
			Message:   req.Message,
			CreatedAt: req.CreatedAt,
		})
	}
	return view, nil
}

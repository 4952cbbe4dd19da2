package server

import (
	"context"
	"errors"
	"fmt"
	"go-friendship/internal/common/errcode"
	"go-friendship/internal/friendship/model"
	"go-friendship/internal/friendship/repository"
	"go-friendship/internal/pkg/log"
	"go-friendship/internal/pkg/mprometheus"
	"go-friendship/internal/pkg/mtrace"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

const (
	pairLockKey = "friendship:submit:%s:%s"
	pairLockTTL = 5 * time.Second
)

// Locker serialises submits for the same pair across replicas.
type Locker interface {
	TryLock(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, token string) error
}

// Server owns the friend request lifecycle:
//
//	submit:  -> Pending
//	accept:  Pending -> Accepted
//	reject:  Pending -> Rejected
//
// Accepted and Rejected are terminal. Store faults are logged here and
// reported to callers as errcode.ErrServerInternalError.
type Server struct {
	store  repository.Store
	locker Locker
}

type Option func(*Server)

func WithLocker(l Locker) Option {
	return func(s *Server) {
		s.locker = l
	}
}

func NewServer(store repository.Store, opts ...Option) *Server {
	s := &Server{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit records a new pending request from senderID to recipientID. Any
// earlier request for the same ordered pair, whatever its status, makes it
// fail with errcode.ErrDuplicateRequest.
func (s *Server) Submit(ctx context.Context, senderID, recipientID string) (_ *model.FriendRequest, err error) {
	ctx, span := mtrace.StartSpan(ctx, "Submit", trace.WithSpanKind(trace.SpanKindInternal))
	defer mtrace.EndSpan(span)
	defer observe("submit", &err)

	if strings.TrimSpace(senderID) == "" || strings.TrimSpace(recipientID) == "" {
		return nil, errcode.ErrInvalidParam
	}

	if s.locker != nil {
		key := fmt.Sprintf(pairLockKey, senderID, recipientID)
		token := uuid.NewString()
		ok, err := s.locker.TryLock(ctx, key, token, pairLockTTL)
		if err != nil {
			return nil, internal("Submit", err)
		}
		if !ok {
			// another submit for the pair is in flight and may still fail,
			// so this one is retryable rather than a duplicate
			return nil, errcode.ErrSubmitInProgress
		}
		defer func() {
			if err := s.locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
				log.Warnf("unlock %s: %v", key, err)
			}
		}()
	}

	_, err = s.store.FindMatching(ctx, senderID, recipientID)
	if err == nil {
		return nil, errcode.ErrDuplicateRequest
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, internal("Submit", err)
	}

	req := &model.FriendRequest{
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      model.StatusPending,
	}
	if _, err = s.store.Insert(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, errcode.ErrDuplicateRequest
		}
		return nil, internal("Submit", err)
	}
	span.SetAttributes(mtrace.FriendRequestID.Int64(req.ID))
	return req, nil
}

// Accept moves a pending request to Accepted and records the friendship
// between the two users.
func (s *Server) Accept(ctx context.Context, id int64) (err error) {
	ctx, span := mtrace.StartSpan(ctx, "Accept", trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(mtrace.FriendRequestID.Int64(id)))
	defer mtrace.EndSpan(span)
	defer observe("accept", &err)

	req, err := s.pending(ctx, "Accept", id)
	if err != nil {
		return err
	}
	err = s.store.AcceptAndBefriend(ctx, id, model.NewFriendship(req.SenderID, req.RecipientID, id))
	return s.resolve("Accept", err)
}

// Reject moves a pending request to Rejected.
func (s *Server) Reject(ctx context.Context, id int64) (err error) {
	ctx, span := mtrace.StartSpan(ctx, "Reject", trace.WithSpanKind(trace.SpanKindInternal), trace.WithAttributes(mtrace.FriendRequestID.Int64(id)))
	defer mtrace.EndSpan(span)
	defer observe("reject", &err)

	if _, err = s.pending(ctx, "Reject", id); err != nil {
		return err
	}
	err = s.store.Update(ctx, id, model.StatusPending, model.StatusRejected)
	return s.resolve("Reject", err)
}

func (s *Server) Get(ctx context.Context, id int64) (*model.FriendRequest, error) {
	req, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errcode.ErrRequestNotFound
		}
		return nil, internal("Get", err)
	}
	return req, nil
}

func (s *Server) pending(ctx context.Context, op string, id int64) (*model.FriendRequest, error) {
	req, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errcode.ErrNotFoundOrNotPending
		}
		return nil, internal(op, err)
	}
	if req.Status != model.StatusPending {
		return nil, errcode.ErrNotFoundOrNotPending
	}
	return req, nil
}

// resolve maps the outcome of a status write. ErrNotFound there means another
// caller resolved the request between our read and our write.
func (s *Server) resolve(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return errcode.ErrNotFoundOrNotPending
	}
	return internal(op, err)
}

func internal(op string, err error) error {
	log.Errorf("%s: %+v", op, err)
	return errcode.ErrServerInternalError
}

func observe(op string, err *error) {
	result := "ok"
	if *err != nil {
		result = "error"
		var e *errcode.Error
		if errors.As(*err, &e) {
			result = fmt.Sprintf("%d", e.Code)
		}
	}
	mprometheus.RequestTransitions.WithLabelValues(op, result).Inc()
}

package leave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"leavehub/internal/leave"
	leaveerrors "leavehub/internal/leave/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubLeaveService struct {
	resp leave.LeaveResponse
	err  error

	actorID        string
	createReq      *leave.CreateLeaveRequest
	approveID      string
	approveComment string
	rejectID       string
	rejectComment  string
	cancelID       string
}

func (s *stubLeaveService) Create(ctx context.Context, actorID string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	s.actorID = actorID
	s.createReq = &req
	return s.resp, s.err
}

func (s *stubLeaveService) GetAll(ctx context.Context, actorID string) ([]leave.LeaveResponse, error) {
	s.actorID = actorID
	return []leave.LeaveResponse{s.resp}, s.err
}

func (s *stubLeaveService) GetByID(ctx context.Context, actorID, id string) (leave.LeaveResponse, error) {
	s.actorID = actorID
	return s.resp, s.err
}

func (s *stubLeaveService) Update(ctx context.Context, actorID, id string, req leave.UpdateLeaveRequest) (leave.LeaveResponse, error) {
	s.actorID = actorID
	return s.resp, s.err
}

func (s *stubLeaveService) Approve(ctx context.Context, actorID, id, comment string) (leave.LeaveResponse, error) {
	s.actorID = actorID
	s.approveID = id
	s.approveComment = comment
	return s.resp, s.err
}

func (s *stubLeaveService) Reject(ctx context.Context, actorID, id, comment string) (leave.LeaveResponse, error) {
	s.actorID = actorID
	s.rejectID = id
	s.rejectComment = comment
	return s.resp, s.err
}

func (s *stubLeaveService) Cancel(ctx context.Context, actorID, id string) (leave.LeaveResponse, error) {
	s.actorID = actorID
	s.cancelID = id
	return s.resp, s.err
}

func (s *stubLeaveService) Delete(ctx context.Context, actorID, id string) error {
	s.actorID = actorID
	return s.err
}

type handlerEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func runLeaveHandler(t *testing.T, handler gin.HandlerFunc, body, paramID string) (*httptest.ResponseRecorder, handlerEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/leaves", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("employee_id", "actor-1")
	if paramID != "" {
		c.Params = gin.Params{{Key: "id", Value: paramID}}
	}

	handler(c)

	var env handlerEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

func TestLeaveHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &stubLeaveService{resp: leave.LeaveResponse{ID: "leave-1", Status: "PENDING", TotalDays: 3}}
		h := leave.NewHandler(svc)

		w, env := runLeaveHandler(t, h.Create,
			`{"leave_type_id":"5a9f9df5-30cc-4daf-8e45-e9f47b140d3a","start_date":"2026-09-07","end_date":"2026-09-09","reason":"trip"}`, "")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Ok)
		assert.Equal(t, "actor-1", svc.actorID)
		assert.Equal(t, "2026-09-07", svc.createReq.StartDate)

		var data leave.LeaveResponse
		assert.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, "PENDING", data.Status)
	})

	t.Run("missing fields is a validation error", func(t *testing.T) {
		svc := &stubLeaveService{}
		h := leave.NewHandler(svc)

		w, env := runLeaveHandler(t, h.Create, `{"reason":"trip"}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Ok)
		assert.Nil(t, svc.createReq, "service must not be reached on invalid input")
	})

	t.Run("non uuid type id rejected by binding", func(t *testing.T) {
		svc := &stubLeaveService{}
		h := leave.NewHandler(svc)

		w, _ := runLeaveHandler(t, h.Create,
			`{"leave_type_id":"annual","start_date":"2026-09-07","end_date":"2026-09-09"}`, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.createReq)
	})

	t.Run("overlap maps to conflict", func(t *testing.T) {
		svc := &stubLeaveService{err: leaveerrors.ErrLeaveOverlap}
		h := leave.NewHandler(svc)

		w, env := runLeaveHandler(t, h.Create,
			`{"leave_type_id":"5a9f9df5-30cc-4daf-8e45-e9f47b140d3a","start_date":"2026-09-07","end_date":"2026-09-09"}`, "")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "CONFLICT", env.Error.Code)
	})
}

func TestLeaveHandler_Approve(t *testing.T) {
	t.Run("empty body approves without a comment", func(t *testing.T) {
		svc := &stubLeaveService{resp: leave.LeaveResponse{ID: "leave-1", Status: "APPROVED"}}
		h := leave.NewHandler(svc)

		w, env := runLeaveHandler(t, h.Approve, "", "leave-1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, env.Ok)
		assert.Equal(t, "leave-1", svc.approveID)
		assert.Empty(t, svc.approveComment)
	})

	t.Run("comment forwarded", func(t *testing.T) {
		svc := &stubLeaveService{resp: leave.LeaveResponse{Status: "APPROVED"}}
		h := leave.NewHandler(svc)

		_, _ = runLeaveHandler(t, h.Approve, `{"comment":"enjoy"}`, "leave-1")
		assert.Equal(t, "enjoy", svc.approveComment)
	})

	t.Run("undecidable request maps to forbidden", func(t *testing.T) {
		svc := &stubLeaveService{err: leaveerrors.ErrNotAuthorizedToDecide}
		h := leave.NewHandler(svc)

		w, env := runLeaveHandler(t, h.Approve, "", "leave-1")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})
}

func TestLeaveHandler_Reject(t *testing.T) {
	t.Run("comment required", func(t *testing.T) {
		svc := &stubLeaveService{}
		h := leave.NewHandler(svc)

		w, env := runLeaveHandler(t, h.Reject, `{}`, "leave-1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Ok)
		assert.Empty(t, svc.rejectID, "service must not be reached without a comment")
	})

	t.Run("rejected with comment", func(t *testing.T) {
		svc := &stubLeaveService{resp: leave.LeaveResponse{Status: "REJECTED"}}
		h := leave.NewHandler(svc)

		w, _ := runLeaveHandler(t, h.Reject, `{"comment":"overlapping project deadline"}`, "leave-1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "overlapping project deadline", svc.rejectComment)
	})
}

func TestLeaveHandler_Cancel(t *testing.T) {
	svc := &stubLeaveService{resp: leave.LeaveResponse{Status: "CANCELLED"}}
	h := leave.NewHandler(svc)

	w, env := runLeaveHandler(t, h.Cancel, "", "leave-9")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Ok)
	assert.Equal(t, "leave-9", svc.cancelID)
	assert.Equal(t, "actor-1", svc.actorID)
}

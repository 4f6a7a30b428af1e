package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"academy-payments/internal/domain"
	"academy-payments/internal/domain/model"
	"academy-payments/internal/infra/metrics"
	"academy-payments/internal/usecase"
)

// ===== JSON plumbing =====

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessage emits the {"message": ...} error envelope every client of
// this API expects on non-2xx responses.
func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"message": msg})
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrPlanNotSelected),
		errors.Is(err, domain.ErrPhoneRequired),
		errors.Is(err, domain.ErrWalletRequired),
		errors.Is(err, domain.ErrInvalidArgument):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrRateLimited):
		writeMessage(w, http.StatusTooManyRequests, "too many requests, slow down")
	case errors.Is(err, domain.ErrGatewayUnavailable):
		writeMessage(w, http.StatusBadGateway, "payment gateway unavailable, try again")
	default:
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// ===== Payments =====

type paymentProcessRequest struct {
	CourseID      string `json:"courseId"`
	PaymentType   string `json:"paymentType"`   // one_time | installment
	PaymentMethod string `json:"paymentMethod"` // card | mobile_wallet
	WalletType    string `json:"walletType,omitempty"`
	Phone         string `json:"phone"`
	Months        int    `json:"months,omitempty"`
}

type paymentProcessResponse struct {
	ReferenceID string `json:"referenceId"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

func (s *Server) handlePaymentProcess(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())

	var req paymentProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	intent, err := s.payUC.Initiate(r.Context(), usecase.InitiateRequest{
		CourseID:    req.CourseID,
		UserID:      claims.Subject,
		PaymentType: model.PaymentType(req.PaymentType),
		Method:      model.PaymentMethod(req.PaymentMethod),
		WalletType:  req.WalletType,
		Phone:       req.Phone,
		Months:      req.Months,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// Finalize in the background while the client polls the verify endpoint.
	go func(refID string) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		poller := usecase.AutoVerify(s.payUC, refID)
		state := poller.Run(ctx)
		if err := poller.Err(); err != nil {
			s.log.Warn().Err(err).Str("ref_id", refID).Msg("auto verify gave up, reconciler will retry")
			return
		}
		s.log.Info().Str("ref_id", refID).Str("state", string(state)).Msg("auto verify finished")
	}(intent.ReferenceID)

	writeJSON(w, http.StatusCreated, paymentProcessResponse{
		ReferenceID: intent.ReferenceID,
		RedirectURL: intent.RedirectURL,
	})
}

type paymentView struct {
	Status        string              `json:"status"`
	CourseID      string              `json:"courseId"`
	CourseName    string              `json:"courseName"`
	Amount        int64               `json:"amount"`
	Currency      string              `json:"currency"`
	PaymentMethod string              `json:"paymentMethod"`
	WalletType    string              `json:"walletType,omitempty"`
	Type          string              `json:"type"`
	PaymentDate   *time.Time          `json:"paymentDate,omitempty"`
	Installments  []model.Installment `json:"installments,omitempty"`
}

func (s *Server) handlePaymentVerify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	refID := chi.URLParam(r, "referenceId")
	if refID == "" {
		metrics.PaymentVerifyRequests.WithLabelValues("fail", "bad_reference").Inc()
		writeMessage(w, http.StatusBadRequest, "missing reference id")
		return
	}

	intent, err := s.payUC.Status(r.Context(), refID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.PaymentVerifyRequests.WithLabelValues("fail", "not_found").Inc()
		} else {
			metrics.PaymentVerifyRequests.WithLabelValues("fail", "unknown").Inc()
		}
		metrics.PaymentVerifyDuration.WithLabelValues("fail").Observe(time.Since(start).Seconds())
		writeError(w, err)
		return
	}

	// Course name is cosmetic; a lookup failure must not fail verification.
	var courseName string
	if c, err := s.courseUC.Get(r.Context(), intent.CourseID); err == nil {
		courseName = c.Name
	}

	metrics.PaymentVerifyRequests.WithLabelValues("ok", "").Inc()
	metrics.PaymentVerifyDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, map[string]paymentView{"payment": {
		Status:        string(intent.Status),
		CourseID:      intent.CourseID,
		CourseName:    courseName,
		Amount:        intent.Amount,
		Currency:      intent.Currency,
		PaymentMethod: string(intent.Method),
		WalletType:    string(intent.WalletType),
		Type:          string(intent.PaymentType),
		PaymentDate:   intent.PaidAt,
		Installments:  intent.Installments,
	}})
}

func (s *Server) handleRevenueStats(w http.ResponseWriter, r *http.Request) {
	out := make(map[string]int64, 3)
	for _, period := range []string{"week", "month", "year"} {
		total, err := s.payUC.SumByPeriod(r.Context(), period)
		if err != nil {
			writeError(w, err)
			return
		}
		out[period] = total
	}
	writeJSON(w, http.StatusOK, out)
}

// ===== Courses =====

type courseRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	Active      *bool  `json:"active,omitempty"`
}

type courseView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency"`
	Active      bool   `json:"active"`
}

func toCourseView(c *model.Course) courseView {
	return courseView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Price:       c.Price,
		Currency:    c.Currency,
		Active:      c.Active,
	}
}

func (s *Server) handleCourseList(w http.ResponseWriter, r *http.Request) {
	courses, err := s.courseUC.ListActive(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]courseView, 0, len(courses))
	for _, c := range courses {
		out = append(out, toCourseView(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCourseGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.courseUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCourseView(c))
}

func (s *Server) handleCourseCreate(w http.ResponseWriter, r *http.Request) {
	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := s.courseUC.Create(r.Context(), req.Name, req.Description, req.Price, req.Currency)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCourseView(c))
}

func (s *Server) handleCourseUpdate(w http.ResponseWriter, r *http.Request) {
	c, err := s.courseUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req courseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	if req.Description != "" {
		c.Description = req.Description
	}
	if req.Price > 0 {
		c.Price = req.Price
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if err := s.courseUC.Update(r.Context(), c); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCourseView(c))
}

// ===== Sessions =====

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func toUserView(u *model.User) userView {
	return userView{ID: u.ID, Email: u.Email, FullName: u.FullName, Phone: u.Phone, Role: string(u.Role)}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := s.userUC.Register(r.Context(), req.Email, req.Password, req.FullName, req.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.auth.Mint(w, u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(u))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := s.userUC.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.auth.Mint(w, u); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(u))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := sessionFrom(r.Context())
	u, err := s.userUC.Get(r.Context(), claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(u))
}

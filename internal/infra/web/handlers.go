package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"elearning-platform/internal/domain"
	"elearning-platform/internal/domain/model"
	"elearning-platform/internal/domain/ports/adapter"
	"elearning-platform/internal/domain/ports/repository"
	"elearning-platform/internal/infra/metrics"
	"elearning-platform/internal/usecase"
)

// respondJSON writes v with the given status. A nil v writes the status
// line only.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondErr maps domain errors to HTTP statuses. Anything unmapped is a
// plain 500 so storage details never leak to callers.
func respondErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrAlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidStateTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrPromotionInactive),
		errors.Is(err, domain.ErrPromotionOutOfWindow),
		errors.Is(err, domain.ErrPromotionExhausted),
		errors.Is(err, domain.ErrPromotionNotApplicable):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func pageParams(r *http.Request) (offset, limit int) {
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// ===== Auth =====

type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func registerHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		usr, err := userUC.Register(r.Context(), req.Email, req.FullName)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, usr)
	}
}

type loginRequest struct {
	Email string `json:"email"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// loginHandler mints a session token for a known account. There is no
// password layer here; identity proofing belongs to the SSO front door.
func loginHandler(users repository.UserRepository, auth *AuthManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		usr, err := users.FindByEmail(r.Context(), req.Email)
		if err != nil {
			respondErr(w, err)
			return
		}
		if !usr.IsActive {
			http.Error(w, "account disabled", http.StatusForbidden)
			return
		}
		tok, err := auth.Mint(usr.ID, usr.Role)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		respondJSON(w, http.StatusOK, loginResponse{Token: tok, UserID: usr.ID, Role: string(usr.Role)})
	}
}

// ===== Users (admin) =====

func usersListHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pageParams(r)
		list, err := userUC.List(r.Context(), offset, limit)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

func usersGetHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		usr, err := userUC.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, usr)
	}
}

func usersSetRoleHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Role string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := userUC.SetRole(r.Context(), chi.URLParam(r, "id"), model.UserRole(req.Role)); err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

func usersSetActiveHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if err := userUC.SetActive(r.Context(), chi.URLParam(r, "id"), req.Active); err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

func usersCountHandler(userUC usecase.UserUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := userUC.Count(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]int{"count": n})
	}
}

// ===== Courses =====

type courseCreateRequest struct {
	Title             string `json:"title"`
	Slug              string `json:"slug"`
	OwnerID           string `json:"owner_id"`
	OneTimePriceCents int64  `json:"one_time_price_cents"`
}

func coursesCreateHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courseCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		course, err := catalogUC.CreateCourse(r.Context(), req.Title, req.Slug, req.OwnerID, req.OneTimePriceCents)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, course)
	}
}

type courseUpdateRequest struct {
	Title              *string `json:"title"`
	Status             *string `json:"status"`
	OneTimePriceCents  *int64  `json:"one_time_price_cents"`
	SubPrice1MCents    *int64  `json:"sub_price_1m_cents"`
	SubPrice3MCents    *int64  `json:"sub_price_3m_cents"`
	SubPrice6MCents    *int64  `json:"sub_price_6m_cents"`
	AllowsSubscription *bool   `json:"allows_subscription"`
}

func coursesUpdateHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req courseUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		upd := usecase.CourseUpdate{
			Title:              req.Title,
			OneTimePriceCents:  req.OneTimePriceCents,
			SubPrice1MCents:    req.SubPrice1MCents,
			SubPrice3MCents:    req.SubPrice3MCents,
			SubPrice6MCents:    req.SubPrice6MCents,
			AllowsSubscription: req.AllowsSubscription,
		}
		if req.Status != nil {
			st := model.CourseStatus(*req.Status)
			upd.Status = &st
		}
		course, err := catalogUC.UpdateCourse(r.Context(), chi.URLParam(r, "id"), upd)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, course)
	}
}

func coursesGetHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		course, err := catalogUC.GetCourse(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, course)
	}
}

func coursesListHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pageParams(r)
		list, err := catalogUC.ListCourses(r.Context(), offset, limit)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

func coursesPublishedHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := catalogUC.ListPublishedCourses(r.Context())
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

func coursesDeleteHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := catalogUC.DeleteCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

// ===== Packages =====

type packageCreateRequest struct {
	Title             string `json:"title"`
	OneTimePriceCents int64  `json:"one_time_price_cents"`
}

func packagesCreateHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req packageCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		pkg, err := catalogUC.CreatePackage(r.Context(), req.Title, req.OneTimePriceCents)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, pkg)
	}
}

func packagesGetHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pkg, err := catalogUC.GetPackage(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, pkg)
	}
}

func packagesListHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pageParams(r)
		list, err := catalogUC.ListPackages(r.Context(), offset, limit)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

func packagesDeleteHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := catalogUC.DeletePackage(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

func packageLinkHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := catalogUC.AddCourseToPackage(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "courseID"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

func packageUnlinkHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := catalogUC.RemoveCourseFromPackage(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "courseID"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

func packageExpandHandler(catalogUC usecase.CatalogUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ids, err := catalogUC.ExpandPackage(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string][]string{"course_ids": ids})
	}
}

// ===== Promotions (admin) =====

type promotionCreateRequest struct {
	Code              string     `json:"code"`
	DiscountPercent   int        `json:"discount_percent"`
	DiscountCents     int64      `json:"discount_cents"`
	MaxUses           *int       `json:"max_uses"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	AppliesToCourses  bool       `json:"applies_to_courses"`
	AppliesToPackages bool       `json:"applies_to_packages"`
}

func promotionsCreateHandler(promoUC usecase.PromotionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req promotionCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		code, err := promoUC.Create(r.Context(), req.Code, req.DiscountPercent, req.DiscountCents, usecase.PromotionOptions{
			MaxUses:           req.MaxUses,
			ValidFrom:         req.ValidFrom,
			ValidUntil:        req.ValidUntil,
			AppliesToCourses:  req.AppliesToCourses,
			AppliesToPackages: req.AppliesToPackages,
		})
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusCreated, code)
	}
}

type promotionUpdateRequest struct {
	DiscountPercent   *int       `json:"discount_percent"`
	DiscountCents     *int64     `json:"discount_cents"`
	MaxUses           *int       `json:"max_uses"`
	ValidFrom         *time.Time `json:"valid_from"`
	ValidUntil        *time.Time `json:"valid_until"`
	AppliesToCourses  *bool      `json:"applies_to_courses"`
	AppliesToPackages *bool      `json:"applies_to_packages"`
}

func promotionsUpdateHandler(promoUC usecase.PromotionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req promotionUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		code, err := promoUC.Update(r.Context(), chi.URLParam(r, "id"), usecase.PromotionUpdate{
			DiscountPercent:   req.DiscountPercent,
			DiscountCents:     req.DiscountCents,
			MaxUses:           req.MaxUses,
			ValidFrom:         req.ValidFrom,
			ValidUntil:        req.ValidUntil,
			AppliesToCourses:  req.AppliesToCourses,
			AppliesToPackages: req.AppliesToPackages,
		})
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, code)
	}
}

func promotionsListHandler(promoUC usecase.PromotionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		offset, limit := pageParams(r)
		list, err := promoUC.List(r.Context(), offset, limit)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

func promotionsGetHandler(promoUC usecase.PromotionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code, err := promoUC.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, code)
	}
}

func promotionsDeactivateHandler(promoUC usecase.PromotionUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := promoUC.Deactivate(r.Context(), chi.URLParam(r, "id")); err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

// ===== Payments =====

type paymentCreateRequest struct {
	CourseID           *string `json:"course_id"`
	PackageID          *string `json:"package_id"`
	Type               string  `json:"type"`
	PromotionCode      *string `json:"promotion_code"`
	SubscriptionMonths *int    `json:"subscription_months"`
}

type paymentCreateResponse struct {
	Payment     *model.Payment `json:"payment"`
	SessionID   string         `json:"session_id"`
	RedirectURL string         `json:"redirect_url"`
}

// paymentsCreateHandler opens a pending payment for the caller. The
// amount always comes from the catalog, never from the client.
func paymentsCreateHandler(paymentUC usecase.PaymentUseCase, catalogUC usecase.CatalogUseCase, gateway adapter.PaymentGateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, ok := IdentityFrom(ctx)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req paymentCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		amount, description, err := listPrice(ctx, catalogUC, req)
		if err != nil {
			respondErr(w, err)
			return
		}

		p, err := paymentUC.Create(ctx, usecase.CreatePaymentInput{
			UserID:             id.UserID,
			CourseID:           req.CourseID,
			PackageID:          req.PackageID,
			Type:               model.PaymentType(req.Type),
			AmountCents:        amount,
			PromotionCode:      req.PromotionCode,
			SubscriptionMonths: req.SubscriptionMonths,
		})
		if err != nil {
			respondErr(w, err)
			return
		}

		sessionID, redirectURL, err := gateway.CreateCheckout(ctx, p.FinalCents, "usd", description)
		if err != nil {
			http.Error(w, "payment provider unavailable", http.StatusBadGateway)
			return
		}
		respondJSON(w, http.StatusCreated, paymentCreateResponse{Payment: p, SessionID: sessionID, RedirectURL: redirectURL})
	}
}

// listPrice resolves the catalog price for the purchase target.
func listPrice(ctx context.Context, catalogUC usecase.CatalogUseCase, req paymentCreateRequest) (int64, string, error) {
	switch {
	case req.CourseID != nil && req.PackageID == nil:
		course, err := catalogUC.GetCourse(ctx, *req.CourseID)
		if err != nil {
			return 0, "", err
		}
		if model.PaymentType(req.Type) == model.PaymentTypeSubscription {
			if req.SubscriptionMonths == nil {
				return 0, "", domain.ErrInvalidArgument
			}
			price, err := course.SubscriptionPriceCents(*req.SubscriptionMonths)
			return price, course.Title, err
		}
		return course.OneTimePriceCents, course.Title, nil
	case req.PackageID != nil && req.CourseID == nil:
		pkg, err := catalogUC.GetPackage(ctx, *req.PackageID)
		if err != nil {
			return 0, "", err
		}
		if model.PaymentType(req.Type) == model.PaymentTypeSubscription {
			if req.SubscriptionMonths == nil {
				return 0, "", domain.ErrInvalidArgument
			}
			price, err := pkg.SubscriptionPriceCents(*req.SubscriptionMonths)
			return price, pkg.Title, err
		}
		return pkg.OneTimePriceCents, pkg.Title, nil
	default:
		return 0, "", domain.ErrInvalidArgument
	}
}

type paymentCompleteRequest struct {
	GatewayRef string `json:"gateway_ref"`
}

func paymentsCompleteHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req paymentCompleteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		p, err := paymentUC.Complete(r.Context(), chi.URLParam(r, "id"), req.GatewayRef)
		if err != nil {
			if errors.Is(err, domain.ErrPromotionExhausted) {
				metrics.IncPromotionRedemption("exhausted")
			}
			respondErr(w, err)
			return
		}
		if p.PromotionCodeID != nil {
			metrics.IncPromotionRedemption("ok")
		}
		metrics.IncPayment(string(p.Status))
		metrics.AddPaymentRevenue(string(p.Type), p.FinalCents)
		respondJSON(w, http.StatusOK, p)
	}
}

func paymentsTransitionHandler(fn func(ctx context.Context, paymentID string) (*model.Payment, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := fn(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		metrics.IncPayment(string(p.Status))
		respondJSON(w, http.StatusOK, p)
	}
}

func paymentsGetHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := paymentUC.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		id, ok := IdentityFrom(r.Context())
		if !ok || (!id.IsAdmin() && p.UserID != id.UserID) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		respondJSON(w, http.StatusOK, p)
	}
}

func paymentsMineHandler(paymentUC usecase.PaymentUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		offset, limit := pageParams(r)
		list, err := paymentUC.ListByUser(r.Context(), id.UserID, offset, limit)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// ===== Access (admin grants + checks) =====

type accessGrantRequest struct {
	UserID      string     `json:"user_id"`
	CourseID    string     `json:"course_id"`
	PackageID   string     `json:"package_id"`
	AccessType  string     `json:"access_type"`
	AccessUntil *time.Time `json:"access_until"`
}

func accessGrantHandler(accessUC usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFrom(r.Context())
		var req accessGrantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		actor := id.UserID

		if req.PackageID != "" {
			grants, err := accessUC.GrantPackageAccess(r.Context(), req.UserID, req.PackageID,
				model.AccessType(req.AccessType), req.AccessUntil, nil, &actor)
			if err != nil {
				respondErr(w, err)
				return
			}
			for range grants {
				metrics.IncAccessGrant(req.AccessType)
			}
			respondJSON(w, http.StatusCreated, grants)
			return
		}

		grant, err := accessUC.GrantCourseAccess(r.Context(), usecase.GrantInput{
			UserID:      req.UserID,
			CourseID:    req.CourseID,
			AccessType:  model.AccessType(req.AccessType),
			AccessUntil: req.AccessUntil,
			ActorID:     &actor,
		})
		if err != nil {
			respondErr(w, err)
			return
		}
		metrics.IncAccessGrant(req.AccessType)
		respondJSON(w, http.StatusCreated, grant)
	}
}

type accessRevokeRequest struct {
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
}

func accessRevokeHandler(accessUC usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFrom(r.Context())
		var req accessRevokeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		actor := id.UserID
		if err := accessUC.RevokeCourseAccess(r.Context(), req.UserID, req.CourseID, &actor); err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusNoContent, nil)
	}
}

// accessCheckHandler answers the single question the content delivery
// layer asks: may this user open this course right now.
func accessCheckHandler(accessUC usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("user_id")
		courseID := r.URL.Query().Get("course_id")
		if userID == "" || courseID == "" {
			http.Error(w, "user_id and course_id are required", http.StatusBadRequest)
			return
		}
		allowed, err := accessUC.HasValidAccess(r.Context(), userID, courseID)
		if err != nil {
			respondErr(w, err)
			return
		}
		metrics.IncAccessCheck(allowed)
		respondJSON(w, http.StatusOK, map[string]bool{"allowed": allowed})
	}
}

func myCoursesHandler(accessUC usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		list, err := accessUC.UserAccessibleCourses(r.Context(), id.UserID)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

func userCoursesHandler(accessUC usecase.AccessUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := accessUC.UserAccessibleCourses(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, list)
	}
}

// ===== Audit (admin) =====

func auditListHandler(audit repository.AuditRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit <= 0 || limit > 500 {
			limit = 100
		}
		recs, err := audit.ListByEntity(r.Context(), chi.URLParam(r, "entityType"), chi.URLParam(r, "entityID"), limit)
		if err != nil {
			respondErr(w, err)
			return
		}
		respondJSON(w, http.StatusOK, recs)
	}
}

package services

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/havenapp/haven-backend/internal/data/repos"
	types "github.com/havenapp/haven-backend/internal/domain"
	"github.com/havenapp/haven-backend/internal/pkg/apierr"
	"github.com/havenapp/haven-backend/internal/pkg/ctxutil"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/pkg/logger"
)

// IncomingAlertView is one active alert aimed at the viewer, joined with the
// sender's summary and latest known position.
type IncomingAlertView struct {
	repos.IncomingAlert
	Sender types.UserSummary `json:"sender"`
}

type AlertService interface {
	// Send starts a live alert toward a saved contact, superseding any still
	// active alert of the same ordered pair.
	Send(dbc dbctx.Context, receiverID uuid.UUID, latitude, longitude float64, accuracy *float64) (*types.LocationAlert, error)
	Stop(dbc dbctx.Context, alertID uuid.UUID) (*types.LocationAlert, error)
	Incoming(dbc dbctx.Context) ([]IncomingAlertView, error)
	UpdateLocation(dbc dbctx.Context, latitude, longitude float64, accuracy *float64) (*types.LocationSnapshot, error)
}

type alertService struct {
	db       *gorm.DB
	log      *logger.Logger
	users    repos.UserRepo
	contacts repos.ContactRepo
	alerts   repos.LocationAlertRepo
	snaps    repos.LocationSnapshotRepo
	presence PresenceService
	notify   Notifier
}

func NewAlertService(
	db *gorm.DB,
	baseLog *logger.Logger,
	userRepo repos.UserRepo,
	contactRepo repos.ContactRepo,
	alertRepo repos.LocationAlertRepo,
	snapshotRepo repos.LocationSnapshotRepo,
	presence PresenceService,
	notify Notifier,
) AlertService {
	return &alertService{
		db:       db,
		log:      baseLog.With("service", "AlertService"),
		users:    userRepo,
		contacts: contactRepo,
		alerts:   alertRepo,
		snaps:    snapshotRepo,
		presence: presence,
		notify:   notify,
	}
}

func validateCoordinates(latitude, longitude float64) error {
	if latitude < -90 || latitude > 90 {
		return apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("latitude must be between -90 and 90"))
	}
	if longitude < -180 || longitude > 180 {
		return apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("longitude must be between -180 and 180"))
	}
	return nil
}

func (s *alertService) Send(dbc dbctx.Context, receiverID uuid.UUID, latitude, longitude float64, accuracy *float64) (*types.LocationAlert, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	if receiverID == uuid.Nil {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("receiver id is required"))
	}
	if receiverID == rd.UserID {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("cannot send an alert to yourself"))
	}
	if err := validateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}

	// The receiver must be in the sender's contact list. Checked before any
	// write so a rejected send leaves no rows behind.
	isContact, err := s.contacts.Exists(dbc, rd.UserID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("check contact: %w", err)
	}
	if !isContact {
		return nil, apierr.New(http.StatusForbidden, "not_a_contact", fmt.Errorf("receiver is not a contact"))
	}

	transaction := dbc.Tx
	if transaction == nil {
		transaction = s.db
	}

	var alert *types.LocationAlert
	err = transaction.WithContext(dbc.Ctx).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: txx}
		now := time.Now().UTC()

		// Supersede: close the previous active alert of this pair before the
		// replacement is inserted, inside one transaction.
		if _, dErr := s.alerts.DeactivatePair(inner, rd.UserID, receiverID, now); dErr != nil {
			return fmt.Errorf("deactivate previous alerts: %w", dErr)
		}

		created, aErr := s.alerts.Create(inner, &types.LocationAlert{
			ID:         uuid.New(),
			SenderID:   rd.UserID,
			ReceiverID: receiverID,
			Status:     types.AlertActive,
			StartedAt:  now,
		})
		if aErr != nil {
			return fmt.Errorf("create alert: %w", aErr)
		}
		alert = created

		if _, uErr := s.snaps.Upsert(inner, rd.UserID, latitude, longitude, accuracy); uErr != nil {
			return fmt.Errorf("upsert snapshot: %w", uErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notify != nil {
		sender := s.senderSummary(dbc, rd.UserID)
		s.notify.AlertStarted(receiverID, alert, sender)
	}
	return alert, nil
}

func (s *alertService) Stop(dbc dbctx.Context, alertID uuid.UUID) (*types.LocationAlert, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	if alertID == uuid.Nil {
		return nil, apierr.New(http.StatusBadRequest, "validation_error", fmt.Errorf("alert id is required"))
	}

	alert, err := s.alerts.GetByID(dbc, alertID)
	if err != nil {
		return nil, fmt.Errorf("load alert: %w", err)
	}
	if alert == nil {
		return nil, apierr.New(http.StatusNotFound, "alert_not_found", fmt.Errorf("alert not found"))
	}
	// Only the sender may stop, the receiver included in the refusal.
	if alert.SenderID != rd.UserID {
		return nil, apierr.New(http.StatusForbidden, "permission_denied", fmt.Errorf("only the sender can stop an alert"))
	}
	if alert.Status != types.AlertActive {
		// Stopping twice converges on the same inactive row.
		return alert, nil
	}

	now := time.Now().UTC()
	affected, err := s.alerts.Deactivate(dbc, alert.ID, now)
	if err != nil {
		return nil, fmt.Errorf("deactivate alert: %w", err)
	}
	if affected > 0 {
		alert.Status = types.AlertInactive
		alert.EndedAt = &now
		alert.UpdatedAt = now
		if s.notify != nil {
			s.notify.AlertStopped(alert.ReceiverID, alert)
		}
	}
	return alert, nil
}

func (s *alertService) Incoming(dbc dbctx.Context) ([]IncomingAlertView, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}

	rows, err := s.alerts.ListActiveIncoming(dbc, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("list incoming alerts: %w", err)
	}
	if len(rows) == 0 {
		return []IncomingAlertView{}, nil
	}

	senderIDs := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		senderIDs = append(senderIDs, row.SenderID)
	}
	senders, err := s.users.GetByIDs(dbc, senderIDs)
	if err != nil {
		return nil, fmt.Errorf("load senders: %w", err)
	}
	summaries := make(map[uuid.UUID]types.UserSummary, len(senders))
	for _, u := range senders {
		summaries[u.ID] = types.Summarize(u)
	}

	out := make([]IncomingAlertView, 0, len(rows))
	for _, row := range rows {
		out = append(out, IncomingAlertView{
			IncomingAlert: *row,
			Sender:        summaries[row.SenderID],
		})
	}

	refs := make([]*types.UserSummary, 0, len(out))
	for i := range out {
		refs = append(refs, &out[i].Sender)
	}
	decoratePresence(dbc.Ctx, s.presence, refs...)
	return out, nil
}

func (s *alertService) UpdateLocation(dbc dbctx.Context, latitude, longitude float64, accuracy *float64) (*types.LocationSnapshot, error) {
	rd := ctxutil.GetRequestData(dbc.Ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.New(http.StatusUnauthorized, "not_authenticated", fmt.Errorf("not authenticated"))
	}
	if err := validateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}

	snap, err := s.snaps.Upsert(dbc, rd.UserID, latitude, longitude, accuracy)
	if err != nil {
		return nil, fmt.Errorf("upsert snapshot: %w", err)
	}
	return snap, nil
}

func (s *alertService) senderSummary(dbc dbctx.Context, userID uuid.UUID) types.UserSummary {
	users, err := s.users.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil || len(users) == 0 {
		return types.UserSummary{ID: userID}
	}
	return types.Summarize(users[0])
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	notificationservice "renthub/internal/notifications/service"
	propertieserrors "renthub/internal/properties/errors"
	"renthub/internal/properties/repository"
	"renthub/internal/properties/validator"
	"renthub/pkg/config"
	apperrors "renthub/pkg/errors"
	"renthub/pkg/events"
	"renthub/pkg/middleware"
	"renthub/pkg/model"
	"renthub/pkg/sanitizer"
)

type PropertyService interface {
	Create(ctx context.Context, actor middleware.Identity, property *model.Property) (*model.Property, error)
	GetByID(ctx context.Context, id string) (*model.Property, error)
	List(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error)
	ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, int64, error)
	Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Property, int64, error)
	Filter(ctx context.Context, filter model.PropertyFilter, limit int, offset int64) ([]*model.Property, int64, error)
	Update(ctx context.Context, actor middleware.Identity, id string, update model.PropertyUpdate) (*model.Property, error)
	Delete(ctx context.Context, actor middleware.Identity, id string) error
	SetStatus(ctx context.Context, actor middleware.Identity, id, status string) (*model.Property, error)
	Assign(ctx context.Context, actor middleware.Identity, id, userID string) (*model.Property, error)
}

type propertyService struct {
	repo      repository.PropertyRepository
	validator *validator.PropertyValidator
	notifier  notificationservice.Notifier
	publisher events.Publisher
	cfg       *config.Config
}

func NewPropertyService(
	repo repository.PropertyRepository,
	propertyValidator *validator.PropertyValidator,
	notifier notificationservice.Notifier,
	publisher events.Publisher,
	cfg *config.Config,
) PropertyService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &propertyService{
		repo:      repo,
		validator: propertyValidator,
		notifier:  notifier,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *propertyService) Create(ctx context.Context, actor middleware.Identity, property *model.Property) (*model.Property, error) {
	property.Title = sanitizer.NormalizeTitle(property.Title)
	property.Description = sanitizer.TrimAndNormalize(property.Description)
	property.Location = sanitizer.NormalizeLocation(property.Location)
	property.Images = sanitizer.NormalizeImageURLs(s.cfg.BaseURL, property.Images)
	property.OwnerID = actor.UserID
	property.AssignedTo = ""

	// New listings always enter moderation; admins can flip the status
	// afterwards.
	property.Status = model.PropertyStatusPending

	if err := s.validator.ValidateCreate(property); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.cfg.Log.Error("Failed to create property", "owner_id", actor.UserID, "error", err)
		return nil, apperrors.Internal("Failed to create property", err)
	}

	s.cfg.Log.Info("Property created", "property_id", property.ID, "owner_id", property.OwnerID)
	return property, nil
}

func (s *propertyService) GetByID(ctx context.Context, id string) (*model.Property, error) {
	property, err := s.repo.FindByID(ctx, model.NormalizeID(id))
	if err != nil {
		return nil, translateLookupError(id, err)
	}
	s.normalizeImages(property)
	return property, nil
}

// normalizeImages resolves stored image paths against the configured
// base URL on the way out. Rows written before absolute URLs were
// enforced still carry relative paths.
func (s *propertyService) normalizeImages(properties ...*model.Property) {
	for _, property := range properties {
		if property != nil && len(property.Images) > 0 {
			property.Images = sanitizer.NormalizeImageURLs(s.cfg.BaseURL, property.Images)
		}
	}
}

func (s *propertyService) List(ctx context.Context, limit int, offset int64) ([]*model.Property, int64, error) {
	properties, total, err := s.repo.FindAll(ctx, config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset))
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list properties", err)
	}
	s.normalizeImages(properties...)
	return properties, total, nil
}

func (s *propertyService) ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, int64, error) {
	ownerID = model.NormalizeID(ownerID)
	if !model.IsValidID(ownerID) {
		return nil, 0, apperrors.InvalidInput("Invalid owner ID format")
	}

	properties, total, err := s.repo.FindByOwner(ctx, ownerID, config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset))
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list properties by owner", err)
	}
	s.normalizeImages(properties...)
	return properties, total, nil
}

func (s *propertyService) Search(ctx context.Context, query string, limit int, offset int64) ([]*model.Property, int64, error) {
	query = sanitizer.TrimAndNormalize(query)
	if query == "" {
		return nil, 0, apperrors.InvalidInput("Search query must not be empty")
	}

	properties, total, err := s.repo.Search(ctx, query, config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset))
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to search properties", err)
	}
	s.normalizeImages(properties...)
	return properties, total, nil
}

func (s *propertyService) Filter(ctx context.Context, filter model.PropertyFilter, limit int, offset int64) ([]*model.Property, int64, error) {
	if err := s.validator.ValidateFilter(&filter); err != nil {
		return nil, 0, err
	}

	properties, total, err := s.repo.Filter(ctx, filter, config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset))
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to filter properties", err)
	}
	s.normalizeImages(properties...)
	return properties, total, nil
}

func (s *propertyService) Update(ctx context.Context, actor middleware.Identity, id string, update model.PropertyUpdate) (*model.Property, error) {
	id = model.NormalizeID(id)

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookupError(id, err)
	}
	if err := s.authorizeOwner(actor, existing); err != nil {
		return nil, err
	}

	update.Title = sanitizer.NormalizeTitle(update.Title)
	update.Description = sanitizer.TrimAndNormalize(update.Description)
	update.Location = sanitizer.NormalizeLocation(update.Location)
	if update.Images != nil {
		update.Images = sanitizer.NormalizeImageURLs(s.cfg.BaseURL, update.Images)
	}

	if err := s.validator.ValidateUpdate(&update); err != nil {
		return nil, err
	}

	property, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return nil, translateLookupError(id, err)
	}

	return property, nil
}

func (s *propertyService) Delete(ctx context.Context, actor middleware.Identity, id string) error {
	id = model.NormalizeID(id)

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return translateLookupError(id, err)
	}
	if err := s.authorizeOwner(actor, existing); err != nil {
		return err
	}

	// A property with a live tenant cannot simply disappear.
	if model.StatusCarriesAssignment(existing.Status) {
		return apperrors.InvalidOperation("cannot delete a property with an active assignment")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return translateLookupError(id, err)
	}

	s.cfg.Log.Info("Property deleted", "property_id", id, "actor_id", actor.UserID)
	return nil
}

func (s *propertyService) SetStatus(ctx context.Context, actor middleware.Identity, id, status string) (*model.Property, error) {
	id = model.NormalizeID(id)

	if err := s.validator.ValidateStatus(status); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookupError(id, err)
	}

	// Moderation verdicts are admin-only; owners may only publish an
	// approved listing or take it off the market.
	if !actor.IsAdmin() {
		if existing.OwnerID != actor.UserID {
			return nil, apperrors.Forbidden("only the owner or an admin may change property status")
		}
		if !ownerAllowedTransition(existing.Status, status) {
			return nil, apperrors.Forbidden("owners may only move listings between approved and available")
		}
	}

	if model.StatusCarriesAssignment(status) && existing.AssignedTo == "" {
		return nil, apperrors.InvalidOperation(fmt.Sprintf("status %q requires an assigned tenant", status))
	}

	property, err := s.repo.SetStatus(ctx, id, status)
	if err != nil {
		return nil, translateLookupError(id, err)
	}

	if existing.Status != property.Status {
		s.notifyStatusChange(ctx, actor, property)
	}

	return property, nil
}

func (s *propertyService) Assign(ctx context.Context, actor middleware.Identity, id, userID string) (*model.Property, error) {
	id = model.NormalizeID(id)
	userID = model.NormalizeID(userID)

	if !model.IsValidID(userID) {
		return nil, apperrors.InvalidInput("Invalid user ID format")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookupError(id, err)
	}
	if err := s.authorizeOwner(actor, existing); err != nil {
		return nil, err
	}

	if model.StatusCarriesAssignment(existing.Status) {
		return nil, apperrors.Conflict("property already has an active assignment")
	}

	property, err := s.repo.Assign(ctx, id, userID, model.PropertyStatusAssigned)
	if err != nil {
		return nil, translateLookupError(id, err)
	}

	s.notifier.Notify(ctx, userID,
		fmt.Sprintf("You have been assigned to property %q.", property.Title),
		model.NotificationTypeAssignment, property.ID)

	if err := s.publisher.Publish(ctx, events.LifecycleEvent{
		Type:       events.TypePropertyAssigned,
		PropertyID: property.ID,
		UserID:     userID,
		ActorID:    actor.UserID,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.cfg.Log.Warn("Failed to publish assignment event", "property_id", property.ID, "error", err)
	}

	return property, nil
}

func (s *propertyService) authorizeOwner(actor middleware.Identity, property *model.Property) error {
	if actor.IsAdmin() || property.OwnerID == actor.UserID {
		return nil
	}
	return apperrors.Forbidden("caller is not the property owner")
}

// ownerAllowedTransition limits owners to publishing and unpublishing
// an already moderated listing.
func ownerAllowedTransition(from, to string) bool {
	switch {
	case from == model.PropertyStatusApproved && to == model.PropertyStatusAvailable:
		return true
	case from == model.PropertyStatusAvailable && to == model.PropertyStatusApproved:
		return true
	}
	return false
}

func (s *propertyService) notifyStatusChange(ctx context.Context, actor middleware.Identity, property *model.Property) {
	var message string
	switch property.Status {
	case model.PropertyStatusApproved:
		message = fmt.Sprintf("Your property %q has been approved.", property.Title)
	case model.PropertyStatusRejected:
		message = fmt.Sprintf("Your property %q has been rejected.", property.Title)
	case model.PropertyStatusAvailable:
		message = fmt.Sprintf("Your property %q is now listed as available.", property.Title)
	case model.PropertyStatusBooked:
		message = fmt.Sprintf("Your property %q has been booked.", property.Title)
	default:
		message = fmt.Sprintf("Your property %q status changed to %s.", property.Title, property.Status)
	}

	if property.OwnerID != actor.UserID {
		s.notifier.Notify(ctx, property.OwnerID, message, model.NotificationTypeStatusUpdate, property.ID)
	}

	if err := s.publisher.Publish(ctx, events.LifecycleEvent{
		Type:       events.TypePropertyStatusChanged,
		PropertyID: property.ID,
		ActorID:    actor.UserID,
		OccurredAt: time.Now().UTC(),
	}); err != nil {
		s.cfg.Log.Warn("Failed to publish status change event", "property_id", property.ID, "error", err)
	}
}

func translateLookupError(id string, err error) error {
	if errors.Is(err, propertieserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Property", id)
	}
	if errors.Is(err, propertieserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid property ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Property storage operation failed", err)
}

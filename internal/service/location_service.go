package service

import (
	"context"

	"github.com/google/uuid"

	"parkspot/internal/db"
	"parkspot/internal/repository"
)

// LocationService wraps location metadata CRUD and discovery. Slot capacity
// reads/resizes go through the capacity repository so they share the
// conditional-update guarantees with the reservation service.
type LocationService struct {
	Repo     *repository.LocationRepository
	Capacity *repository.CapacityRepository
}

func NewLocationService(repo *repository.LocationRepository, capacity *repository.CapacityRepository) *LocationService {
	return &LocationService{Repo: repo, Capacity: capacity}
}

func (s *LocationService) CreateLocation(ctx context.Context, loc *db.ParkingLocation) error {
	loc.ID = uuid.NewString()
	return s.Repo.Create(ctx, loc)
}

func (s *LocationService) GetLocation(ctx context.Context, id string) (*db.ParkingLocation, error) {
	return s.Repo.GetByID(ctx, id)
}

func (s *LocationService) ListLocations(ctx context.Context) ([]db.ParkingLocation, error) {
	return s.Repo.List(ctx)
}

func (s *LocationService) SearchLocations(ctx context.Context, q string) ([]db.ParkingLocation, error) {
	return s.Repo.Search(ctx, q)
}

// NearbyLocations returns locations within radiusMeters of (lat, lng),
// closest first.
func (s *LocationService) NearbyLocations(ctx context.Context, lat, lng, radiusMeters float64) ([]db.ParkingLocation, error) {
	return s.Repo.Nearby(ctx, lat, lng, radiusMeters)
}

func (s *LocationService) UpdateLocation(ctx context.Context, loc *db.ParkingLocation) error {
	return s.Repo.UpdateMetadata(ctx, loc)
}

func (s *LocationService) DeleteLocation(ctx context.Context, id string) error {
	return s.Repo.Delete(ctx, id)
}

func (s *LocationService) GetAvailability(ctx context.Context, locationID string) ([]db.SlotCapacity, error) {
	return s.Capacity.GetAvailability(ctx, locationID)
}

func (s *LocationService) ResizeSlotPool(ctx context.Context, locationID string, vt db.VehicleType, newTotal, priceCents int) error {
	return s.Capacity.ResizePool(ctx, locationID, vt, newTotal, priceCents)
}

package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mateusmacedo/go-busfinder/internal/busfinder/domain"
	"github.com/mateusmacedo/go-busfinder/pkg/application"
)

// bookingRecord é a linha da tabela bookings. Seq preserva a ordem de inclusão,
// que é o que DeleteAt usa como posição.
type bookingRecord struct {
	Seq         uint   `gorm:"primaryKey;autoIncrement"`
	BookingID   string `gorm:"column:booking_id;index"`
	Owner       string `gorm:"index"`
	Origin      string
	Destination string
	TravelDate  string `gorm:"size:10"`
	Carrier     string
}

func (bookingRecord) TableName() string { return "bookings" }

// GormBookingStore cumpre o mesmo contrato do JSONFileStore sobre Postgres.
type GormBookingStore struct {
	db     *gorm.DB
	logger application.AppLogger
}

func NewGormBookingStore(dsn string, logger application.AppLogger) (*GormBookingStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return NewGormBookingStoreFromDB(db, logger)
}

func NewGormBookingStoreFromDB(db *gorm.DB, logger application.AppLogger) (*GormBookingStore, error) {
	if err := db.AutoMigrate(&bookingRecord{}); err != nil {
		return nil, err
	}
	return &GormBookingStore{db: db, logger: logger}, nil
}

func (r *GormBookingStore) Load(ctx context.Context) ([]domain.Booking, error) {
	var records []bookingRecord
	if err := r.db.WithContext(ctx).Order("seq").Find(&records).Error; err != nil {
		application.LogError(ctx, r.logger, "failed to load bookings", err, nil)
		return nil, err
	}

	bookings := make([]domain.Booking, 0, len(records))
	for _, rec := range records {
		b, err := rec.toDomain()
		if err != nil {
			return nil, &domain.CorruptStoreError{Path: "postgres:bookings", Err: err}
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (r *GormBookingStore) Append(ctx context.Context, booking domain.Booking) error {
	rec := fromDomain(booking)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		application.LogError(ctx, r.logger, "failed to save booking", err, map[string]interface{}{
			"booking": booking,
		})
		return err
	}

	application.LogInfo(ctx, r.logger, "booking saved", map[string]interface{}{
		"booking_id": booking.ID,
		"seq":        rec.Seq,
	})
	return nil
}

func (r *GormBookingStore) DeleteAt(ctx context.Context, index int) error {
	if index < 0 {
		return nil
	}

	var rec bookingRecord
	err := r.db.WithContext(ctx).Order("seq").Offset(index).Limit(1).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		application.LogError(ctx, r.logger, "failed to locate booking", err, map[string]interface{}{"index": index})
		return err
	}

	if err := r.db.WithContext(ctx).Delete(&bookingRecord{}, rec.Seq).Error; err != nil {
		application.LogError(ctx, r.logger, "failed to delete booking", err, map[string]interface{}{"seq": rec.Seq})
		return err
	}

	application.LogInfo(ctx, r.logger, "booking deleted", map[string]interface{}{
		"index": index,
		"seq":   rec.Seq,
	})
	return nil
}

func fromDomain(b domain.Booking) bookingRecord {
	return bookingRecord{
		BookingID:   b.ID,
		Owner:       b.Owner,
		Origin:      b.Origin,
		Destination: b.Destination,
		TravelDate:  b.TravelDate.String(),
		Carrier:     b.Carrier,
	}
}

func (rec bookingRecord) toDomain() (domain.Booking, error) {
	date, err := domain.ParseDate(rec.TravelDate)
	if err != nil {
		return domain.Booking{}, fmt.Errorf("row %d: %w", rec.Seq, err)
	}
	owner := rec.Owner
	if owner == "" {
		owner = domain.GuestOwner
	}
	return domain.Booking{
		ID:          rec.BookingID,
		Owner:       owner,
		Origin:      rec.Origin,
		Destination: rec.Destination,
		TravelDate:  date,
		Carrier:     rec.Carrier,
	}, nil
}

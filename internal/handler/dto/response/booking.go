package response

import (
	"time"

	"travel-backoffice/internal/domain/booking"
	"travel-backoffice/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

const dateLayout = "2006-01-02"

type BookingResponse struct {
	ID              uuid.UUID `json:"id"`
	Version         int64     `json:"version"`
	CustomerName    string    `json:"customerName"`
	CustomerEmail   *string   `json:"customerEmail,omitempty"`
	Destination     string    `json:"destination"`
	Status          string    `json:"status"`
	DepartureDate   string    `json:"departureDate"`
	ReturnDate      *string   `json:"returnDate,omitempty"`
	Travelers       int       `json:"travelers"`
	TotalPriceCents int64     `json:"totalPriceCents"`
	Currency        string    `json:"currency"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedBy       uuid.UUID `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type BookingListResponse struct {
	Items      []*BookingResponse `json:"items"`
	NextCursor string             `json:"nextCursor,omitempty"`
}

// Envelope wraps every successful payload.
type Envelope[T any] struct {
	Data T `json:"data"`
}

var dateConverters = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: time.Time{},
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				return src.(time.Time).Format(dateLayout), nil
			},
		},
		{
			SrcType: &time.Time{},
			DstType: new(string),
			Fn: func(src any) (any, error) {
				t, _ := src.(*time.Time)
				if t == nil {
					return (*string)(nil), nil
				}
				s := t.Format(dateLayout)
				return &s, nil
			},
		},
	},
}

// FromBookingView maps a read model row. Dates render as YYYY-MM-DD.
func FromBookingView(v *queries.BookingView) (*BookingResponse, error) {
	res := &BookingResponse{}
	if err := copier.CopyWithOption(res, v, dateConverters); err != nil {
		return nil, err
	}
	return res, nil
}

func FromBookingViews(items []*queries.BookingView) ([]*BookingResponse, error) {
	res := make([]*BookingResponse, len(items))
	for i, it := range items {
		r, err := FromBookingView(it)
		if err != nil {
			return nil, err
		}
		res[i] = r
	}
	return res, nil
}

func FromBooking(b *booking.Booking) *BookingResponse {
	d := b.Details()
	res := &BookingResponse{
		ID:              b.ID(),
		Version:         b.Version(),
		CustomerName:    d.CustomerName,
		CustomerEmail:   d.CustomerEmail,
		Destination:     d.Destination,
		Status:          d.Status.String(),
		DepartureDate:   d.DepartureDate.Format(dateLayout),
		Travelers:       d.Travelers,
		TotalPriceCents: d.TotalPriceCents,
		Currency:        d.Currency,
		Notes:           d.Notes,
		CreatedBy:       b.CreatedBy(),
		CreatedAt:       b.CreatedAt(),
		UpdatedAt:       b.UpdatedAt(),
	}
	if d.ReturnDate != nil {
		r := d.ReturnDate.Format(dateLayout)
		res.ReturnDate = &r
	}
	return res
}

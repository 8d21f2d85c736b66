package grpc

import "time"

const (
	ServiceName = "storefront.inquiry.v1.InquiryService"
	DateLayout  = "2006-01-02"
)

type SubmitRequest struct {
	Kind        string `json:"kind"`
	ContactName string `json:"contact_name"`
	PartnerName string `json:"partner_name,omitempty"`
	Phone       string `json:"phone"`
	EventDate   string `json:"event_date"`
	Guests      int    `json:"guests"`
	Venue       string `json:"venue"`
	Notes       string `json:"notes,omitempty"`
}

type ListRequest struct {
	Kind string `json:"kind,omitempty"`
}

type Inquiry struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	ContactName string    `json:"contact_name"`
	PartnerName string    `json:"partner_name,omitempty"`
	Phone       string    `json:"phone"`
	EventDate   string    `json:"event_date"`
	Guests      int       `json:"guests"`
	Venue       string    `json:"venue"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type Inquiries struct {
	Inquiries []Inquiry `json:"inquiries"`
}

package notifications

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/order"
)

//go:embed templates/*.html
var templateFS embed.FS

type templates struct {
	byType map[TemplateType]*template.Template
}

func parseTemplates() (*templates, error) {
	t := &templates{byType: make(map[TemplateType]*template.Template)}
	for _, tt := range []TemplateType{
		TemplateOrderConfirmation,
		TemplateOrderStatusUpdate,
		TemplateDeliveryAssignment,
		TemplateOtpAdvisory,
	} {
		parsed, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(tt)+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", tt, err)
		}
		t.byType[tt] = parsed
	}
	return t, nil
}

func (t *templates) render(tt TemplateType, view orderView) (string, error) {
	tpl, ok := t.byType[tt]
	if !ok {
		return "", fmt.Errorf("unknown template %s", tt)
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", view); err != nil {
		return "", fmt.Errorf("render %s: %w", tt, err)
	}
	return buf.String(), nil
}

type itemView struct {
	Name                 string
	Quantity             int
	LineTotal            string
	RequiresPrescription bool
}

type orderView struct {
	Heading         string
	RecipientName   string
	OrderID         string
	StatusLabel     string
	Items           []itemView
	Subtotal        string
	Tax             string
	DeliveryFee     string
	Total           string
	PaymentMethod   string
	ShippingAddress string
	Location        string
	MapsURL         string
	ExpectedAt      string
	CancelReason    string
	Otp             string
}

func newOrderView(o *order.Order, heading, recipientName string) orderView {
	a := o.Amounts()
	v := orderView{
		Heading:         heading,
		RecipientName:   recipientName,
		OrderID:         o.ID().String(),
		StatusLabel:     StatusLabel(o.Status()),
		Subtotal:        a.Subtotal().String(),
		Tax:             a.Tax().String(),
		DeliveryFee:     a.DeliveryFee().String(),
		Total:           a.Total().String(),
		PaymentMethod:   o.PaymentMethod().String(),
		ShippingAddress: o.ShippingAddress(),
		CancelReason:    o.CancelReason(),
	}
	if v.RecipientName == "" {
		v.RecipientName = "there"
	}
	for _, item := range o.Items() {
		v.Items = append(v.Items, itemView{
			Name:                 item.Name(),
			Quantity:             item.Quantity(),
			LineTotal:            item.LineTotal().String(),
			RequiresPrescription: item.RequiresPrescription(),
		})
	}
	if loc := o.CustomerLocation(); loc != nil {
		v.Location = loc.String()
		v.MapsURL = "https://www.google.com/maps/search/?api=1&query=" + url.QueryEscape(loc.String())
	}
	if at := o.ExpectedDeliveryAt(); at != nil {
		v.ExpectedAt = at.Format(time.RFC1123)
	}
	return v
}

// StatusLabel is the customer-facing wording of a status.
func StatusLabel(s order.Status) string {
	switch s {
	case order.OutForDelivery:
		return "Out for Delivery"
	case order.Unknown:
		return "Unknown"
	default:
		str := s.String()
		return strings.ToUpper(str[:1]) + str[1:]
	}
}

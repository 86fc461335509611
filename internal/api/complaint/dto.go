package complaint

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"ScamSOS/internal/entity"
	"ScamSOS/pkg/document"
)

// Amount is the money lost, kept as the victim wrote it ("S$1,200").
// Older clients send a bare number, which is accepted and kept in decimal form.
type Amount string

var errAmountType = errors.New("amount must be a string or a number")

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*a = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(strings.TrimSpace(s))
		return nil
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		raw := string(data)
		if !strings.ContainsAny(raw, "eE") {
			*a = Amount(raw)
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return errAmountType
		}
		*a = Amount(strconv.FormatFloat(f, 'f', -1, 64))
		return nil
	default:
		return errAmountType
	}
}

type ComplaintRequest struct {
	Name         string `json:"name" validate:"notblank,max=200"`
	Contact      string `json:"contact" validate:"notblank,max=32"`
	Address      string `json:"address" validate:"notblank,max=500"`
	Category     string `json:"category" validate:"omitempty,oneof=OPA OPB OPC Others"`
	Situation    string `json:"situation" validate:"notblank,max=10000"`
	CallerNumber string `json:"caller_number" validate:"max=64"`
	AWBNumber    string `json:"awb_number" validate:"max=64"`
	Amount       Amount `json:"amount" validate:"max=64"`
}

// Prefill trims every field and fills identity fields the form left empty
// from the session.
func (r *ComplaintRequest) Prefill(sess *entity.Session) {
	r.Name = strings.TrimSpace(r.Name)
	r.Contact = strings.TrimSpace(r.Contact)
	r.Address = strings.TrimSpace(r.Address)
	r.Category = strings.TrimSpace(r.Category)
	r.Situation = strings.TrimSpace(r.Situation)
	r.CallerNumber = strings.TrimSpace(r.CallerNumber)
	r.AWBNumber = strings.TrimSpace(r.AWBNumber)

	if sess == nil {
		return
	}
	if r.Name == "" {
		r.Name = sess.Name
	}
	if r.Contact == "" {
		r.Contact = sess.Contact
	}
	if r.Address == "" {
		r.Address = sess.Address
	}
	if r.Category == "" {
		r.Category = sess.Category
	}
}

type FileComplaintResult struct {
	Document   *document.Document
	ArchiveURL string
}

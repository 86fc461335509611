package entity

import "time"

type Complaint struct {
	ID           string
	Name         string
	Contact      string
	Address      string
	Category     string
	Situation    string
	CallerNumber string
	AWBNumber    string
	Amount       string
	CallSummary  string
	FiledAt      time.Time
}

// ComplaintCategories are the scam categories offered on the intake form.
var ComplaintCategories = []string{"OPA", "OPB", "OPC", "Others"}

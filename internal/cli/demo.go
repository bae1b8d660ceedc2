package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spendwatch/paygraph/pkg/store"
)

// demoEdge describes one org → contractor relationship in the demo dataset.
type demoEdge struct {
	org        string
	contractor string
	amounts    []float64
}

// demoData is a small but structurally interesting dataset: hub organizations
// with many contractors, shared contractors between organizations, and a
// spread of totals wide enough to exercise the amount-based sizing.
var demoData = []demoEdge{
	{"Ministry of Health", "MedSupply Ltd", []float64{480000, 320000, 150000}},
	{"Ministry of Health", "CleanCo Services", []float64{85000, 42000}},
	{"Ministry of Health", "BuildRight SA", []float64{1200000}},
	{"Ministry of Education", "BuildRight SA", []float64{640000, 310000}},
	{"Ministry of Education", "EduSoft", []float64{95000, 88000, 72000}},
	{"Ministry of Education", "CleanCo Services", []float64{38000}},
	{"City of Athens", "CleanCo Services", []float64{125000, 60000}},
	{"City of Athens", "ParkWorks", []float64{210000}},
	{"City of Athens", "MedSupply Ltd", []float64{45000}},
	{"City of Thessaloniki", "ParkWorks", []float64{180000, 90000}},
	{"City of Thessaloniki", "NorthBuild", []float64{520000}},
	{"Regional Hospital", "MedSupply Ltd", []float64{260000, 140000}},
	{"Regional Hospital", "LabTech Hellas", []float64{75000, 54000}},
}

// seedDemoPayments inserts the demo dataset. Each amount becomes its own
// payment with a distinct decision reference, so contract counts are
// meaningful in the aggregated view.
func seedDemoPayments(ctx context.Context, st store.Store) error {
	base := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)

	var payments []store.Payment
	for i, e := range demoData {
		for j, amount := range e.amounts {
			payments = append(payments, store.Payment{
				Org:        e.org,
				Contractor: e.contractor,
				Amount:     amount,
				ADA:        fmt.Sprintf("DEMO-%02d-%02d", i, j),
				IssueDate:  base.AddDate(0, 0, i*7+j),
			})
		}
	}
	return st.Insert(ctx, payments...)
}

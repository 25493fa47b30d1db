package memory

import (
	_ "embed"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"tintura-sst/internal/barcode"
	"tintura-sst/internal/models"
	"tintura-sst/internal/quantity"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type sizeRowFixture struct {
	Color string `yaml:"color"`
	S     int    `yaml:"s"`
	M     int    `yaml:"m"`
	L     int    `yaml:"l"`
	XL    int    `yaml:"xl"`
	XXL   int    `yaml:"xxl"`
	XXXL  int    `yaml:"xxxl"`
}

func (r sizeRowFixture) row() models.SizeRow {
	return models.SizeRow{Color: r.Color, S: r.S, M: r.M, L: r.L, XL: r.XL, XXL: r.XXL, XXXL: r.XXXL}
}

type fixtureSet struct {
	Units []struct {
		ID     int64  `yaml:"id"`
		Name   string `yaml:"name"`
		IsMain bool   `yaml:"is_main"`
	} `yaml:"units"`
	Orders []struct {
		ID                  string           `yaml:"id"`
		OrderNo             string           `yaml:"order_no"`
		UnitID              int64            `yaml:"unit_id"`
		StyleNumber         string           `yaml:"style_number"`
		BoxCount            int              `yaml:"box_count"`
		ActualBoxCount      *int             `yaml:"actual_box_count"`
		TargetDeliveryDate  string           `yaml:"target_delivery_date"`
		Description         string           `yaml:"description"`
		Status              string           `yaml:"status"`
		LastBarcodeSerial   int              `yaml:"last_barcode_serial"`
		SizeBreakdown       []sizeRowFixture `yaml:"size_breakdown"`
		CompletionBreakdown []sizeRowFixture `yaml:"completion_breakdown"`
	} `yaml:"orders"`
	Barcodes []struct {
		OrderNo  string `yaml:"order_no"`
		Style    string `yaml:"style"`
		Size     string `yaml:"size"`
		Sequence int    `yaml:"sequence"`
		Status   string `yaml:"status"`
	} `yaml:"barcodes"`
	MaterialRequests []struct {
		OrderNo           string `yaml:"order_no"`
		MaterialContent   string `yaml:"material_content"`
		QuantityRequested int    `yaml:"quantity_requested"`
		QuantityApproved  int    `yaml:"quantity_approved"`
		Status            string `yaml:"status"`
	} `yaml:"material_requests"`
}

// NewSeeded returns a store loaded with the embedded fixture data.
func NewSeeded() (*Store, error) {
	s := New()
	if err := s.Load(fixturesYAML); err != nil {
		return nil, err
	}
	return s, nil
}

// Load adds the records described by a fixture document to the store.
func (s *Store) Load(doc []byte) error {
	var fx fixtureSet
	if err := yaml.Unmarshal(doc, &fx); err != nil {
		return fmt.Errorf("failed to parse fixtures: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range fx.Units {
		s.units = append(s.units, models.Unit{ID: u.ID, Name: u.Name, IsMain: u.IsMain})
	}

	byNo := map[string]uuid.UUID{}
	for _, fo := range fx.Orders {
		id, err := uuid.Parse(fo.ID)
		if err != nil {
			return fmt.Errorf("fixture order %s: invalid id: %w", fo.OrderNo, err)
		}
		status := models.OrderStatus(fo.Status)
		if !status.Valid() {
			return fmt.Errorf("fixture order %s: unknown status %q", fo.OrderNo, fo.Status)
		}
		o := &models.Order{
			ID:                 id,
			OrderNo:            fo.OrderNo,
			UnitID:             fo.UnitID,
			StyleNumber:        fo.StyleNumber,
			BoxCount:           fo.BoxCount,
			ActualBoxCount:     fo.ActualBoxCount,
			TargetDeliveryDate: fo.TargetDeliveryDate,
			Description:        fo.Description,
			Status:             status,
			LastBarcodeSerial:  fo.LastBarcodeSerial,
		}
		for _, r := range fo.SizeBreakdown {
			o.SizeBreakdown = append(o.SizeBreakdown, r.row())
		}
		for _, r := range fo.CompletionBreakdown {
			o.CompletionBreakdown = append(o.CompletionBreakdown, r.row())
		}
		o.Quantity = quantity.OrderTotal(o.SizeBreakdown)
		s.putOrder(o)
		byNo[o.OrderNo] = id
	}

	for _, fb := range fx.Barcodes {
		orderID, ok := byNo[fb.OrderNo]
		if !ok {
			return fmt.Errorf("fixture barcode references unknown order %s", fb.OrderNo)
		}
		b := &models.Barcode{
			ID:            uuid.New(),
			BarcodeSerial: barcode.FormatSerial(fb.OrderNo, fb.Style, fb.Size, fb.Sequence),
			OrderID:       orderID,
			StyleNumber:   fb.Style,
			Size:          fb.Size,
			Status:        models.BarcodeStatus(fb.Status),
			CreatedAt:     s.now(),
		}
		if !b.Status.Valid() {
			return fmt.Errorf("fixture barcode %s: unknown status %q", b.BarcodeSerial, fb.Status)
		}
		if err := s.putBarcode(b); err != nil {
			return err
		}
	}

	for _, fm := range fx.MaterialRequests {
		orderID, ok := byNo[fm.OrderNo]
		if !ok {
			return fmt.Errorf("fixture material request references unknown order %s", fm.OrderNo)
		}
		m := &models.MaterialRequest{
			ID:                uuid.New(),
			OrderID:           orderID,
			MaterialContent:   fm.MaterialContent,
			QuantityRequested: fm.QuantityRequested,
			QuantityApproved:  fm.QuantityApproved,
			Status:            models.MaterialStatus(fm.Status),
			CreatedAt:         s.now(),
		}
		s.materials[m.ID] = m
		s.materialOrder = append(s.materialOrder, m.ID)
	}
	return nil
}

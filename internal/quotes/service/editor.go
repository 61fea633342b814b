package service

import (
	"context"

	"travel_backoffice/internal/quotes/editor"
	"travel_backoffice/internal/quotes/sequencer"
	"travel_backoffice/internal/quotes/transport"
	"travel_backoffice/platform/sanitize"

	"github.com/google/uuid"
)

// OpenEditor loads the quotation's items into a fresh editor session.
func (s *Service) OpenEditor(ctx context.Context, quotationID uuid.UUID) (*transport.EditorResponse, error) {
	if s.editors == nil {
		return nil, errEditorUnavailable
	}
	session, err := s.editors.Open(ctx, quotationID)
	if err != nil {
		return nil, err
	}
	snap, err := session.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return toEditorResponse(snap), nil
}

// EditorSnapshot renders the open editor.
func (s *Service) EditorSnapshot(ctx context.Context, quotationID uuid.UUID) (*transport.EditorResponse, error) {
	session, err := s.session(quotationID)
	if err != nil {
		return nil, err
	}
	snap, err := session.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return toEditorResponse(snap), nil
}

// CloseEditor drains and discards the editor session.
func (s *Service) CloseEditor(_ context.Context, quotationID uuid.UUID) error {
	if s.editors == nil {
		return errEditorUnavailable
	}
	return s.editors.Close(quotationID)
}

// InsertItem appends a service to the quotation.
func (s *Service) InsertItem(ctx context.Context, quotationID uuid.UUID, req transport.InsertItemRequest) (*transport.EditorResponse, error) {
	session, err := s.session(quotationID)
	if err != nil {
		return nil, err
	}

	start, err := sequencer.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := sequencer.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	snap, err := session.Insert(ctx, sequencer.InsertRequest{
		ServiceRef:  req.ServiceID,
		StartDate:   start,
		EndDate:     end,
		IsOptional:  req.IsOptional,
		DisplayText: sanitize.Text(req.DisplayText),
	})
	if err != nil {
		return nil, err
	}
	return toEditorResponse(snap), nil
}

// MoveItem shifts the item at index by one day.
func (s *Service) MoveItem(ctx context.Context, quotationID uuid.UUID, index int, req transport.MoveItemRequest) (*transport.EditorResponse, error) {
	session, err := s.session(quotationID)
	if err != nil {
		return nil, err
	}
	snap, err := session.Move(ctx, index, req.Delta)
	if err != nil {
		return nil, err
	}
	return toEditorResponse(snap), nil
}

// DeleteItem removes the item at index.
func (s *Service) DeleteItem(ctx context.Context, quotationID uuid.UUID, index int) (*transport.EditorResponse, error) {
	session, err := s.session(quotationID)
	if err != nil {
		return nil, err
	}
	snap, err := session.Delete(ctx, index)
	if err != nil {
		return nil, err
	}
	return toEditorResponse(snap), nil
}

// ServiceOptions lists the services selectable in the insertion form.
func (s *Service) ServiceOptions(ctx context.Context, quotationID uuid.UUID, req transport.ServiceOptionsRequest) ([]transport.ServiceOptionResponse, error) {
	session, err := s.session(quotationID)
	if err != nil {
		return nil, err
	}

	start, err := sequencer.ParseDate(req.Start)
	if err != nil {
		return nil, err
	}
	end, err := sequencer.ParseDate(req.End)
	if err != nil {
		return nil, err
	}

	options, err := session.Options(ctx, req.Type, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ServiceOptionResponse, 0, len(options))
	for _, opt := range options {
		out = append(out, transport.ServiceOptionResponse{
			ID:          opt.ID,
			Name:        opt.Name,
			City:        opt.City,
			ServiceType: opt.ServiceType,
			NightCount:  opt.NightCount,
			IsLodging:   s.cls.IsLodging(opt.ServiceType),
		})
	}
	return out, nil
}

func (s *Service) session(quotationID uuid.UUID) (*editor.Session, error) {
	if s.editors == nil {
		return nil, errEditorUnavailable
	}
	return s.editors.Get(quotationID)
}

func toEditorResponse(snap editor.Snapshot) *transport.EditorResponse {
	return &transport.EditorResponse{
		QuotationID: snap.QuotationID,
		Rows:        snap.Rows,
		Items:       snap.Items,
		Total:       snap.Total.StringFixed(2),
		Sync: transport.SyncResponse{
			Pending:      snap.Sync.Pending,
			Failures:     snap.Sync.Failures,
			LastError:    snap.Sync.LastError,
			LastFailedAt: snap.Sync.LastFailedAt,
		},
	}
}

package track

import (
	"context"
	"log"

	"backend-ridehub/internal/gpx"
	"backend-ridehub/internal/queue"
	"backend-ridehub/internal/stream"
)

// Orchestrator drives a record through pending -> processing ->
// completed|error. Small files run the whole pipeline inside the upload
// request; larger ones are parked as processing and handed to the worker
// pool through the queue.
type Orchestrator struct {
	svc           *Service
	queue         *queue.Queue
	hub           *stream.Hub
	pipeline      PipelineConfig
	syncThreshold int
}

func NewOrchestrator(svc *Service, q *queue.Queue, hub *stream.Hub, pipeline PipelineConfig, syncThreshold int) *Orchestrator {
	return &Orchestrator{
		svc:           svc,
		queue:         q,
		hub:           hub,
		pipeline:      pipeline,
		syncThreshold: syncThreshold,
	}
}

// Ingest accepts one uploaded file for a trip. The returned payload is
// terminal (completed or error) when done reports true; otherwise the
// record is processing and the caller polls by its id.
//
// Parsing always happens here: it is cheap relative to upload I/O and the
// sync-versus-background decision needs the raw point count. A parse
// failure therefore surfaces immediately as a terminal error record.
func (o *Orchestrator) Ingest(ctx context.Context, tripID string, raw []byte) (payload Payload, done bool, err error) {
	points, parseErr := gpx.Parse(raw, o.pipeline.Limits)
	if parseErr != nil {
		rec, err := o.svc.CreateRecord(ctx, Record{
			TripID:      tripID,
			Status:      StatusError,
			ErrorDetail: parseErr.Error(),
		}, nil)
		if err != nil {
			return Payload{}, false, err
		}
		o.publish(rec.ID, StatusError, rec.ErrorDetail)
		return Payload{Record: rec}, true, nil
	}

	if len(points) <= o.syncThreshold {
		rec, err := o.svc.CreateRecord(ctx, Record{TripID: tripID, Status: StatusProcessing}, nil)
		if err != nil {
			return Payload{}, false, err
		}

		res := ProcessPoints(points, o.pipeline)
		if err := o.svc.SaveResult(ctx, rec.ID, res); err != nil {
			detail := "persisting results failed: " + err.Error()
			if markErr := o.svc.MarkError(ctx, rec.ID, detail); markErr != nil {
				return Payload{}, false, markErr
			}
			o.publish(rec.ID, StatusError, detail)
		} else {
			o.publish(rec.ID, StatusCompleted, "")
		}

		payload, err := o.svc.Payload(ctx, rec.ID)
		return payload, true, err
	}

	rec, err := o.svc.CreateRecord(ctx, Record{TripID: tripID, Status: StatusProcessing}, raw)
	if err != nil {
		return Payload{}, false, err
	}
	if err := o.queue.Enqueue(ctx, rec.ID); err != nil {
		detail := "queueing for processing failed: " + err.Error()
		if markErr := o.svc.MarkError(ctx, rec.ID, detail); markErr != nil {
			return Payload{}, false, markErr
		}
		o.publish(rec.ID, StatusError, detail)
		payload, err := o.svc.Payload(ctx, rec.ID)
		return payload, true, err
	}

	o.publish(rec.ID, StatusProcessing, "")
	return Payload{Record: rec}, false, nil
}

// ProcessRecord is the worker entry point: it re-reads the stored upload,
// runs the pipeline, and writes exactly one terminal state. Any stage
// failure aborts the rest and leaves no partially-populated derived fields.
func (o *Orchestrator) ProcessRecord(ctx context.Context, id string) {
	raw, err := o.svc.RawGPX(ctx, id)
	if err != nil {
		o.fail(ctx, id, "loading stored upload failed: "+err.Error())
		return
	}
	if raw == nil {
		// already drained by a terminal transition; nothing to do
		return
	}

	res, err := Process(raw, o.pipeline)
	if err != nil {
		o.fail(ctx, id, err.Error())
		return
	}

	if err := o.svc.SaveResult(ctx, id, res); err != nil {
		o.fail(ctx, id, "persisting results failed: "+err.Error())
		return
	}
	o.publish(id, StatusCompleted, "")
}

func (o *Orchestrator) fail(ctx context.Context, id, detail string) {
	if err := o.svc.MarkError(ctx, id, detail); err != nil {
		log.Printf("track %s: marking error failed: %v", id, err)
		return
	}
	o.publish(id, StatusError, detail)
}

func (o *Orchestrator) publish(id string, status Status, detail string) {
	if o.hub == nil {
		return
	}
	o.hub.PublishStatus(stream.StatusEvent{RecordID: id, Status: string(status), Detail: detail})
}

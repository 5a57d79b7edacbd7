package track

import (
	"errors"
	"io"
	"strconv"

	"backend-ridehub/internal/hover"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, orch *Orchestrator, authMiddleware fiber.Handler) {
	// Ingest boundary. Replies 201 with the terminal payload when the file
	// was processed inline (or failed parsing), 202 with the record id when
	// it went to the background queue.
	r.Post("/upload", authMiddleware, func(c *fiber.Ctx) error {
		tripID := c.FormValue("trip_id")
		if tripID == "" {
			tripID = c.Query("trip_id")
		}
		if tripID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "trip_id required")
		}

		raw, err := uploadBytes(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if len(raw) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "empty upload")
		}

		payload, done, err := orch.Ingest(c.Context(), tripID, raw)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if done {
			return c.Status(fiber.StatusCreated).JSON(payload)
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"id":                payload.Record.ID,
			"processing_status": payload.Record.Status,
		})
	})

	// Status boundary.
	r.Get("/:id/status", func(c *fiber.Ctx) error {
		payload, err := svc.Payload(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(payload)
	})

	// Hover sample over the simplified sequence.
	r.Get("/:id/hover", func(c *fiber.Ctx) error {
		km, err := strconv.ParseFloat(c.Query("km"), 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "km query parameter required")
		}

		points, err := svc.Points(c.Context(), c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		sample, ok := hover.At(hoverPoints(points), km)
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "no simplified points for track")
		}
		return c.JSON(sample)
	})

	// Read boundary for rendering.
	r.Get("/:id", func(c *fiber.Ctx) error {
		payload, err := svc.Payload(c.Context(), c.Params("id"))
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(payload)
	})
}

func uploadBytes(c *fiber.Ctx) ([]byte, error) {
	if header, err := c.FormFile("file"); err == nil {
		f, err := header.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
	// fiber reuses the body buffer between requests
	return append([]byte(nil), c.Body()...), nil
}

func hoverPoints(points []Point) []hover.Point {
	out := make([]hover.Point, len(points))
	for i, p := range points {
		out[i] = hover.Point{
			Lat:        p.Lat,
			Lng:        p.Lng,
			DistanceKm: p.DistanceKm,
			ElevationM: p.ElevationM,
			Gradient:   p.Gradient,
		}
	}
	return out
}

package diary

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
)

// ActiveTrip lets the handler resolve "active" trip references and mirror
// entries onto the in-memory trip.
type ActiveTrip interface {
	ActiveRemoteID() (string, bool)
	AttachDiary(Entry) bool
}

func RegisterRoutes(r fiber.Router, svc *Service, active ActiveTrip, authMiddleware fiber.Handler) {
	save := func(c *fiber.Ctx, tripID string) error {
		note := c.FormValue("note")

		var captions []string
		if raw := c.FormValue("captions"); raw != "" {
			// Malformed caption lists are dropped, not fatal.
			_ = json.Unmarshal([]byte(raw), &captions)
		}

		var photos []Photo
		if form, err := c.MultipartForm(); err == nil && form != nil {
			for i, fh := range form.File["photos"] {
				f, err := fh.Open()
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, err.Error())
				}
				data, err := io.ReadAll(f)
				_ = f.Close()
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, err.Error())
				}
				photo := Photo{Name: fh.Filename, Data: data}
				if i < len(captions) {
					photo.Caption = captions[i]
				}
				photos = append(photos, photo)
			}
		}

		if note == "" && len(photos) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "note or photos required")
		}

		entry, err := svc.Save(c.UserContext(), tripID, note, photos)
		if active != nil {
			active.AttachDiary(entry)
		}
		if err != nil && !errors.Is(err, ErrPartial) {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}

		status := fiber.StatusCreated
		body := fiber.Map{"entry": entry}
		if errors.Is(err, ErrPartial) {
			// The entry is usable and uploaded photos keep their URLs; the
			// client may retry persistence without re-uploading.
			status = fiber.StatusAccepted
			body["retryable"] = true
		}
		return c.Status(status).JSON(body)
	}

	r.Post("/diary", authMiddleware, func(c *fiber.Ctx) error {
		tripID := ""
		if active != nil {
			if id, ok := active.ActiveRemoteID(); ok {
				tripID = id
			}
		}
		return save(c, tripID)
	})

	r.Post("/:id/diary", authMiddleware, func(c *fiber.Ctx) error {
		tripID := c.Params("id")
		if tripID == "active" {
			tripID = ""
			if active != nil {
				if id, ok := active.ActiveRemoteID(); ok {
					tripID = id
				}
			}
		}
		return save(c, tripID)
	})
}

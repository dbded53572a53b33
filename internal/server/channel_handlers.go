package server

import (
	"clipstream/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetChannelProfile handles GET /api/channels/:username. Public, but a
// logged-in viewer also gets their subscription state.
func (s *Server) GetChannelProfile(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)

	profile, err := s.channelService.GetChannelProfile(c.UserContext(), c.Params("username"), viewerID)
	if err != nil {
		return serviceError(c, err)
	}
	return models.Respond(c, fiber.StatusOK, profile, "User channel fetched successfully")
}

// ToggleSubscription handles POST /api/channels/:username/subscribe
func (s *Server) ToggleSubscription(c *fiber.Ctx) error {
	subscribed, err := s.channelService.ToggleSubscription(c.UserContext(), currentUserID(c), c.Params("username"))
	if err != nil {
		return serviceError(c, err)
	}

	message := "Unsubscribed successfully"
	if subscribed {
		message = "Subscribed successfully"
	}
	return models.Respond(c, fiber.StatusOK, fiber.Map{"subscribed": subscribed}, message)
}

package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/motimate/backend/pkg/utils"
)

// Version is the server version, injected at build time:
//
//	go build -ldflags "-X github.com/motimate/backend/internal/handlers.Version=1.2.3"
var Version = "dev"

const apiVersion = "v1"

// MinAppVersion is the oldest client version the server still accepts.
var MinAppVersion = "1.0.0"

type policyResponse struct {
	Version       string `json:"version"`
	APIVersion    string `json:"apiVersion"`
	MinAppVersion string `json:"minAppVersion"`
}

func GetPolicy(c *fiber.Ctx) error {
	return utils.Success(c, fiber.StatusOK, policyResponse{
		Version:       Version,
		APIVersion:    apiVersion,
		MinAppVersion: MinAppVersion,
	})
}

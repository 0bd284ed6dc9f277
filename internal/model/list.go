package model

import (
	"errors"
	"strings"
)

type List struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsOwner  bool   `json:"is_owner"`
	IconName string `json:"icon_name,omitempty"`
	Provider string `json:"provider"`
}

func (l List) Validate() error {
	if strings.TrimSpace(l.ID) == "" {
		return errors.New("model: list id is required")
	}
	if strings.TrimSpace(l.Name) == "" {
		return errors.New("model: list name is required")
	}
	return nil
}

package mocks

import (
	"github.com/stretchr/testify/mock"

	"github.com/feedhub/feedhub-server/internal/model"
)

// Notifier is a mock implementation of model.Notifier.
type Notifier struct {
	mock.Mock
}

func (m *Notifier) PostCreated(post model.Post) {
	m.Called(post)
}

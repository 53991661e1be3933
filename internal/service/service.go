package service

import (
	"github.com/spdash/dashboard/internal/domain"
)

// FetchLogRepository is re-exported from domain for convenience
type FetchLogRepository = domain.FetchLogRepository

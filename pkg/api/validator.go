package api

import "errors"

// MaxCoord - предел модуля координаты в командах.
const MaxCoord = 1 << 15

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func validCoord(q, r int) bool {
	return q > -MaxCoord && q < MaxCoord && r > -MaxCoord && r < MaxCoord
}

func (p CellPayload) Validate() error {
	if !validCoord(p.Q, p.R) {
		return errors.New("cell coordinates out of range")
	}
	return nil
}

func (p TogglePayload) Validate() error {
	if !validCoord(p.Q, p.R) {
		return errors.New("cell coordinates out of range")
	}
	if p.Enabled == nil {
		return errors.New("enabled is required")
	}
	return nil
}

package usecase

import "time"

type Clock interface {
	Now() time.Time
}

// SystemClock - реальное время в зоне приложения
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	now := time.Now()
	if c.Location != nil {
		now = now.In(c.Location)
	}
	return now
}

// FixedClock всегда возвращает одно и то же время
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Cliente del catálogo de cursos. Misma forma que el cliente de auth:
// una petición HTTP con timeout, sin reintentos (el que reintenta es el
// caller si le interesa).
type CourseService struct {
	coursesURL string
	client     *http.Client
}

func NewCourseService(coursesURL string) *CourseService {
	return &CourseService{
		coursesURL: coursesURL,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (c *CourseService) GetCourse(ctx context.Context, courseID string) (*Course, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/courses/%s", c.coursesURL, courseID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("courses request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrCourseNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("courses service returned %d", resp.StatusCode)
	}

	var course Course
	if err := json.NewDecoder(resp.Body).Decode(&course); err != nil {
		return nil, err
	}
	return &course, nil
}

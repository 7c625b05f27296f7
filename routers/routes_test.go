package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"learnhub/config"
	"learnhub/database"
	"learnhub/middleware"
	"learnhub/models"
	"learnhub/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

type apiResponse struct {
	Status  bool                    `json:"status"`
	Message string                  `json:"message"`
	Data    json.RawMessage         `json:"data"`
	Errors  []middleware.FieldError `json:"errors"`
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	config.AppConfig = &config.Config{
		JWTKey:    "test-secret",
		JWTTTL:    time.Hour,
		SaltRound: bcrypt.MinCost,
	}

	db, err := database.OpenMemory(strings.ReplaceAll(t.Name(), "/", "_"))
	require.NoError(t, err)
	database.Use(db)
	t.Cleanup(func() { database.Close(context.Background()) })

	return NewApp(Options{})
}

func createUser(t *testing.T, name, role, status string) (*models.User, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Name:     name,
		Email:    strings.ToLower(name) + "@example.com",
		Password: string(hashed),
		Role:     role,
		Status:   status,
	}
	require.NoError(t, database.Database.Db.Create(&user).Error)

	token, err := middleware.GenerateJWT(&user)
	require.NoError(t, err)
	return &user, token
}

func call(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, apiResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func createWebinar(t *testing.T, speaker *models.User, mutate func(w *models.Webinar)) *models.Webinar {
	t.Helper()
	webinar := models.Webinar{
		Title:        "Concurrency in Go",
		Description:  "Goroutines, channels and the sync package in practice.",
		SpeakerID:    speaker.ID,
		StartTime:    time.Now().UTC().Add(48 * time.Hour),
		Duration:     60,
		Link:         "https://meet.example.com/go",
		MaxAttendees: 100,
		Status:       models.WebinarScheduled,
	}
	if mutate != nil {
		mutate(&webinar)
	}
	require.NoError(t, database.Database.Db.Create(&webinar).Error)
	return &webinar
}

func addAttendees(t *testing.T, webinar *models.Webinar, users ...*models.User) {
	t.Helper()
	for _, u := range users {
		require.NoError(t, database.Database.Db.Create(&models.WebinarAttendee{WebinarID: webinar.ID, UserID: u.ID}).Error)
	}
}

func attendeeCount(t *testing.T, webinarID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, database.Database.Db.Model(&models.WebinarAttendee{}).Where("webinar_id = ?", webinarID).Count(&count).Error)
	return count
}

func createCourse(t *testing.T, instructor *models.User, mutate func(c *models.Course)) *models.Course {
	t.Helper()
	course := models.Course{
		Title:        "Go Fundamentals",
		Description:  "Types, interfaces and error handling.",
		Category:     "programming",
		Level:        models.LevelBeginner,
		InstructorID: instructor.ID,
		Approved:     true,
		Published:    true,
		Tags:         datatypes.JSONSlice[string]{"go"},
	}
	if mutate != nil {
		mutate(&course)
	}
	require.NoError(t, database.Database.Db.Create(&course).Error)
	return &course
}

func path(format string, id uint) string {
	return strings.Replace(format, ":id", strconv.FormatUint(uint64(id), 10), 1)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, "POST", "/api/users/register", "", fiber.Map{
		"name": "Ada", "email": "ADA@example.com", "password": "secret123",
	})
	require.Equal(t, fiber.StatusCreated, status, body.Message)
	registered := decode[struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}](t, body.Data)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "ada@example.com", registered.User.Email)
	assert.Equal(t, models.RoleStudent, registered.User.Role)

	status, body = call(t, app, "POST", "/api/users/register", "", fiber.Map{
		"name": "Ada", "email": "ada@example.com", "password": "secret123",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "User already exists", body.Message)

	status, body = call(t, app, "POST", "/api/users/login", "", fiber.Map{"email": "ada@example.com", "password": "wrong-pass"})
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Invalid email or password", body.Message)

	status, body = call(t, app, "POST", "/api/users/login", "", fiber.Map{"email": "ada@example.com", "password": "secret123"})
	require.Equal(t, fiber.StatusOK, status)
	token := decode[struct {
		Token string `json:"token"`
	}](t, body.Data).Token

	status, body = call(t, app, "GET", "/api/users/profile", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Ada", decode[models.User](t, body.Data).Name)

	status, _ = call(t, app, "GET", "/api/users/profile", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, "POST", "/api/users/register", "", fiber.Map{
		"name": "A", "email": "not-an-email", "password": "123", "role": "superuser",
	})
	require.Equal(t, fiber.StatusBadRequest, status)

	fields := map[string]bool{}
	for _, e := range body.Errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["name"])
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
	assert.True(t, fields["role"])
}

func TestPendingInstructorIsRejected(t *testing.T) {
	app := newTestApp(t)

	status, body := call(t, app, "POST", "/api/users/register", "", fiber.Map{
		"name": "Grace", "email": "grace@example.com", "password": "secret123", "role": "instructor",
	})
	require.Equal(t, fiber.StatusCreated, status)
	registered := decode[map[string]json.RawMessage](t, body.Data)
	assert.NotContains(t, registered, "token")

	status, body = call(t, app, "POST", "/api/users/login", "", fiber.Map{"email": "grace@example.com", "password": "secret123"})
	assert.Equal(t, fiber.StatusForbidden, status)

	_, token := createUser(t, "Pending", models.RoleInstructor, models.UserStatusPending)
	status, body = call(t, app, "GET", "/api/users/profile", token, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Account is pending", body.Message)
}

func TestAdminActivatesUser(t *testing.T) {
	app := newTestApp(t)
	admin, adminToken := createUser(t, "Admin", models.RoleAdmin, models.UserStatusActive)
	pending, pendingToken := createUser(t, "Pending", models.RoleInstructor, models.UserStatusPending)
	_, studentToken := createUser(t, "Student", models.RoleStudent, models.UserStatusActive)

	status, _ := call(t, app, "PATCH", path("/api/users/:id/status", pending.ID), studentToken, fiber.Map{"status": "active"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := call(t, app, "PATCH", path("/api/users/:id/status", pending.ID), adminToken, fiber.Map{"status": "active"})
	require.Equal(t, fiber.StatusOK, status, body.Message)
	assert.Equal(t, models.UserStatusActive, decode[models.User](t, body.Data).Status)

	status, _ = call(t, app, "GET", "/api/users/profile", pendingToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = call(t, app, "PATCH", path("/api/users/:id/status", admin.ID), adminToken, fiber.Map{"status": "suspended"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = call(t, app, "GET", "/api/users?role=instructor", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	list := decode[struct {
		Users []models.User `json:"users"`
	}](t, body.Data)
	require.Len(t, list.Users, 1)
	assert.Equal(t, pending.ID, list.Users[0].ID)
}

func TestWebinarRegistrationRespectsCapacity(t *testing.T) {
	app := newTestApp(t)
	speaker, _ := createUser(t, "Speaker", models.RoleInstructor, models.UserStatusActive)
	a, _ := createUser(t, "Alice", models.RoleStudent, models.UserStatusActive)
	b, _ := createUser(t, "Bob", models.RoleStudent, models.UserStatusActive)
	u, uToken := createUser(t, "Uma", models.RoleStudent, models.UserStatusActive)
	_, vToken := createUser(t, "Vic", models.RoleStudent, models.UserStatusActive)

	webinar := createWebinar(t, speaker, func(w *models.Webinar) { w.MaxAttendees = 3 })
	addAttendees(t, webinar, a, b)

	status, body := call(t, app, "PATCH", path("/api/webinars/register/:id", webinar.ID), uToken, nil)
	require.Equal(t, fiber.StatusOK, status, body.Message)
	registered := decode[models.Webinar](t, body.Data)
	ids := []uint{}
	for _, attendee := range registered.Attendees {
		ids = append(ids, attendee.ID)
	}
	assert.ElementsMatch(t, []uint{a.ID, b.ID, u.ID}, ids)

	status, body = call(t, app, "PATCH", path("/api/webinars/register/:id", webinar.ID), vToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Webinar has reached maximum capacity", body.Message)
	assert.EqualValues(t, 3, attendeeCount(t, webinar.ID))
}

func TestWebinarRegistrationRejectsDuplicates(t *testing.T) {
	app := newTestApp(t)
	speaker, _ := createUser(t, "Speaker", models.RoleInstructor, models.UserStatusActive)
	_, token := createUser(t, "Uma", models.RoleStudent, models.UserStatusActive)
	webinar := createWebinar(t, speaker, nil)

	status, _ := call(t, app, "PATCH", path("/api/webinars/register/:id", webinar.ID), token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body := call(t, app, "PATCH", path("/api/webinars/register/:id", webinar.ID), token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Already registered for this webinar", body.Message)
	assert.EqualValues(t, 1, attendeeCount(t, webinar.ID))
}

func TestWebinarRegistrationReportsCancelledFirst(t *testing.T) {
	app := newTestApp(t)
	speaker, _ := createUser(t, "Speaker", models.RoleInstructor, models.UserStatusActive)
	a, _ := createUser(t, "Alice", models.RoleStudent, models.UserStatusActive)
	_, token := createUser(t, "Uma", models.RoleStudent, models.UserStatusActive)

	webinar := createWebinar(t, speaker, func(w *models.Webinar) {
		w.Status = models.WebinarCancelled
		w.StartTime = time.Now().UTC().Add(-time.Hour)
		w.MaxAttendees = 1
	})
	addAttendees(t, webinar, a)

	status, body := call(t, app, "PATCH", path("/api/webinars/register/:id", webinar.ID), token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "This webinar has been cancelled", body.Message)

	status, body = call(t, app, "PATCH", "/api/webinars/register/9999", token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "Webinar not found", body.Message)
}

func TestWebinarLifecycle(t *testing.T) {
	app := newTestApp(t)
	_, speakerToken := createUser(t, "Speaker", models.RoleInstructor, models.UserStatusActive)
	_, otherToken := createUser(t, "Other", models.RoleInstructor, models.UserStatusActive)
	_, studentToken := createUser(t, "Student", models.RoleStudent, models.UserStatusActive)

	payload := fiber.Map{
		"title":       "Profiling Go services",
		"description": "pprof, trace and flame graphs on a live service.",
		"start_time":  time.Now().UTC().Add(72 * time.Hour).Format(time.RFC3339),
		"duration":    90,
		"link":        "https://meet.example.com/pprof",
	}

	status, _ := call(t, app, "POST", "/api/webinars", studentToken, payload)
	assert.Equal(t, fiber.StatusForbidden, status)

	past := fiber.Map{}
	for k, v := range payload {
		past[k] = v
	}
	past["start_time"] = time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
	status, body := call(t, app, "POST", "/api/webinars", speakerToken, past)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "start_time", body.Errors[0].Field)

	status, body = call(t, app, "POST", "/api/webinars", speakerToken, payload)
	require.Equal(t, fiber.StatusCreated, status, body.Message)
	created := decode[models.Webinar](t, body.Data)
	assert.Equal(t, 100, created.MaxAttendees)
	assert.Equal(t, models.WebinarScheduled, created.Status)

	status, body = call(t, app, "GET", "/api/webinars?status=scheduled", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Webinar](t, body.Data), 1)

	status, _ = call(t, app, "PUT", path("/api/webinars/:id", created.ID), otherToken, fiber.Map{"title": "Hijacked"})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = call(t, app, "PATCH", path("/api/webinars/:id/status", created.ID), speakerToken, fiber.Map{"status": "live"})
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.WebinarLive, decode[models.Webinar](t, body.Data).Status)

	status, _ = call(t, app, "DELETE", path("/api/webinars/:id", created.ID), otherToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
	status, body = call(t, app, "DELETE", path("/api/webinars/:id", created.ID), speakerToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Webinar removed", body.Message)

	status, _ = call(t, app, "GET", path("/api/webinars/:id", created.ID), "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestCourseMutationRequiresOwnerOrAdmin(t *testing.T) {
	app := newTestApp(t)
	owner, ownerToken := createUser(t, "Owner", models.RoleInstructor, models.UserStatusActive)
	_, otherToken := createUser(t, "Other", models.RoleInstructor, models.UserStatusActive)
	_, adminToken := createUser(t, "Admin", models.RoleAdmin, models.UserStatusActive)
	course := createCourse(t, owner, nil)

	status, body := call(t, app, "PUT", path("/api/courses/:id", course.ID), otherToken, fiber.Map{"title": "Stolen course"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Not authorized to update this course", body.Message)

	status, _ = call(t, app, "DELETE", path("/api/courses/:id", course.ID), otherToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	var stored models.Course
	require.NoError(t, database.Database.Db.First(&stored, course.ID).Error)
	assert.Equal(t, "Go Fundamentals", stored.Title)

	status, _ = call(t, app, "PUT", path("/api/courses/:id", course.ID), ownerToken, fiber.Map{"approved": false})
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = call(t, app, "PUT", path("/api/courses/:id", course.ID), ownerToken, fiber.Map{
		"title":   "Go Fundamentals, 2nd edition",
		"lessons": []fiber.Map{{"title": "Hello, world"}, {"title": "Interfaces"}},
	})
	require.Equal(t, fiber.StatusOK, status, body.Message)
	updated := decode[models.Course](t, body.Data)
	assert.Equal(t, "Go Fundamentals, 2nd edition", updated.Title)
	require.Len(t, updated.Lessons, 2)
	assert.Equal(t, "Hello, world", updated.Lessons[0].Title)

	status, body = call(t, app, "DELETE", path("/api/courses/:id", course.ID), adminToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Course removed", body.Message)
}

func TestCourseListHidesUnapprovedCourses(t *testing.T) {
	app := newTestApp(t)
	instructor, instructorToken := createUser(t, "Mentor", models.RoleInstructor, models.UserStatusActive)
	_, adminToken := createUser(t, "Admin", models.RoleAdmin, models.UserStatusActive)

	createCourse(t, instructor, nil)
	hidden := createCourse(t, instructor, func(c *models.Course) {
		c.Title = "Draft"
		c.Approved = false
	})
	createCourse(t, instructor, func(c *models.Course) {
		c.Title = "Unpublished draft"
		c.Published = false
	})

	for _, token := range []string{"", instructorToken} {
		for _, published := range []string{"all", "true", "false"} {
			status, body := call(t, app, "GET", "/api/courses?published="+published, token, nil)
			require.Equal(t, fiber.StatusOK, status)
			courses := decode[[]models.Course](t, body.Data)
			require.Len(t, courses, 1, published)
			assert.True(t, courses[0].Approved)
			assert.True(t, courses[0].Published)
		}
	}

	status, body := call(t, app, "GET", "/api/courses?published=all", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Course](t, body.Data), 3)

	status, body = call(t, app, "GET", "/api/courses?published=false", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	unpublished := decode[[]models.Course](t, body.Data)
	require.Len(t, unpublished, 1)
	assert.Equal(t, "Unpublished draft", unpublished[0].Title)

	status, _ = call(t, app, "GET", path("/api/courses/:id", hidden.ID), "", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = call(t, app, "GET", path("/api/courses/:id", hidden.ID), instructorToken, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, body = call(t, app, "PATCH", path("/api/courses/:id/approve", hidden.ID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, decode[models.Course](t, body.Data).Approved)
}

func TestCreateCourseApprovalDependsOnRole(t *testing.T) {
	app := newTestApp(t)
	_, instructorToken := createUser(t, "Mentor", models.RoleInstructor, models.UserStatusActive)
	_, adminToken := createUser(t, "Admin", models.RoleAdmin, models.UserStatusActive)
	_, studentToken := createUser(t, "Student", models.RoleStudent, models.UserStatusActive)

	payload := fiber.Map{
		"title":       "Testing in Go",
		"description": "Table tests, fakes and testify.",
		"category":    "programming",
		"price":       49.5,
	}

	status, body := call(t, app, "POST", "/api/courses", studentToken, payload)
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Not authorized as instructor", body.Message)

	status, body = call(t, app, "POST", "/api/courses", instructorToken, payload)
	require.Equal(t, fiber.StatusCreated, status, body.Message)
	course := decode[models.Course](t, body.Data)
	assert.False(t, course.Approved)
	assert.False(t, course.Published)

	status, body = call(t, app, "POST", "/api/courses", adminToken, payload)
	require.Equal(t, fiber.StatusCreated, status)
	course = decode[models.Course](t, body.Data)
	assert.True(t, course.Approved)
	assert.True(t, course.Published)
}

func TestEnrollmentFlow(t *testing.T) {
	app := newTestApp(t)
	instructor, _ := createUser(t, "Mentor", models.RoleInstructor, models.UserStatusActive)
	_, token := createUser(t, "Student", models.RoleStudent, models.UserStatusActive)
	course := createCourse(t, instructor, func(c *models.Course) {
		c.Lessons = []models.Lesson{{Title: "One", Order: 1}, {Title: "Two", Order: 2}}
	})
	other := createCourse(t, instructor, func(c *models.Course) {
		c.Lessons = []models.Lesson{{Title: "Elsewhere", Order: 1}}
	})

	status, body := call(t, app, "POST", path("/api/enrollments/enroll/:id", course.ID), token, nil)
	require.Equal(t, fiber.StatusCreated, status, body.Message)
	assert.Equal(t, models.PaymentCompleted, decode[models.Enrollment](t, body.Data).PaymentStatus)

	status, body = call(t, app, "POST", path("/api/enrollments/enroll/:id", course.ID), token, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Already enrolled in this course", body.Message)

	var count int64
	database.Database.Db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&count)
	assert.EqualValues(t, 1, count)

	progressPath := path("/api/enrollments/progress/:id", course.ID)
	lessonID := course.Lessons[0].ID
	for i := 0; i < 2; i++ {
		status, body = call(t, app, "PATCH", progressPath, token, fiber.Map{"completed_lesson_id": lessonID})
		require.Equal(t, fiber.StatusOK, status, body.Message)
	}
	enrollment := decode[models.Enrollment](t, body.Data)
	assert.Len(t, enrollment.CompletedLessons, 1)
	assert.Equal(t, 50, enrollment.Progress)

	status, body = call(t, app, "PATCH", progressPath, token, fiber.Map{"completed_lesson_id": other.Lessons[0].ID})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "completed_lesson_id", body.Errors[0].Field)

	status, body = call(t, app, "PATCH", progressPath, token, fiber.Map{"progress": 101})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = call(t, app, "GET", "/api/enrollments/my-courses", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	mine := decode[[]models.Enrollment](t, body.Data)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Course)
	assert.Equal(t, course.Title, mine[0].Course.Title)
}

func TestContactSubmission(t *testing.T) {
	app := newTestApp(t)
	admin, adminToken := createUser(t, "Admin", models.RoleAdmin, models.UserStatusActive)

	status, body := call(t, app, "POST", "/api/contact", "", fiber.Map{
		"name": "Lin", "email": "lin@example.com", "subject": "Question", "message": "too short",
	})
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "message", body.Errors[0].Field)

	var count int64
	database.Database.Db.Model(&models.Contact{}).Count(&count)
	assert.Zero(t, count)

	status, body = call(t, app, "POST", "/api/contact", "", fiber.Map{
		"name": "  Lin  ", "email": "lin@example.com", "subject": "Course pricing", "message": "Do you offer student discounts?",
	})
	require.Equal(t, fiber.StatusCreated, status, body.Message)
	contact := decode[models.Contact](t, body.Data)
	assert.Equal(t, "Lin", contact.Name)
	assert.False(t, contact.Replied)

	assert.Eventually(t, func() bool {
		list, err := database.Notifications.ListNotifications(context.Background(), admin.ID, 10)
		return err == nil && len(list) == 1
	}, 2*time.Second, 20*time.Millisecond)

	status, body = call(t, app, "GET", "/api/notifications", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	notifications := decode[[]models.Notification](t, body.Data)
	require.Len(t, notifications, 1)
	assert.Equal(t, "New message from Lin: Course pricing", notifications[0].Message)
	assert.Equal(t, contact.ID, notifications[0].RelatedID)

	_, studentToken := createUser(t, "Student", models.RoleStudent, models.UserStatusActive)
	status, _ = call(t, app, "PATCH", "/api/notifications/"+notifications[0].ID+"/read", studentToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
	status, _ = call(t, app, "PATCH", "/api/notifications/"+notifications[0].ID+"/read", adminToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
}

func TestContactSubmissionWithoutAdmin(t *testing.T) {
	app := newTestApp(t)

	status, _ := call(t, app, "POST", "/api/contact", "", fiber.Map{
		"name": "Lin", "email": "lin@example.com", "subject": "Course pricing", "message": "Do you offer student discounts?",
	})
	assert.Equal(t, fiber.StatusCreated, status)
}

func TestContactAdministration(t *testing.T) {
	app := newTestApp(t)
	_, adminToken := createUser(t, "Admin", models.RoleAdmin, models.UserStatusActive)
	_, studentToken := createUser(t, "Student", models.RoleStudent, models.UserStatusActive)

	contact := models.Contact{Name: "Lin", Email: "lin@example.com", Subject: "Refund", Message: "Please refund my order."}
	require.NoError(t, database.Database.Db.Create(&contact).Error)

	status, _ := call(t, app, "GET", "/api/contact", studentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	for _, p := range []string{"/api/contact/:id", "/api/contact/:id/reply", "/api/contact/:id"} {
		status, body := call(t, app, "PATCH", path(p, contact.ID), adminToken, nil)
		require.Equal(t, fiber.StatusOK, status, p)
		assert.True(t, decode[models.Contact](t, body.Data).Replied)
	}

	status, body := call(t, app, "GET", "/api/contact/stats", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	stats := decode[map[string]int64](t, body.Data)
	assert.EqualValues(t, 1, stats["total"])
	assert.EqualValues(t, 0, stats["unreplied"])

	status, body = call(t, app, "GET", "/api/contact", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, decode[[]models.Contact](t, body.Data), 1)

	status, _ = call(t, app, "DELETE", path("/api/contact/:id", contact.ID), adminToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, _ = call(t, app, "GET", path("/api/contact/:id", contact.ID), adminToken, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestContactRateLimit(t *testing.T) {
	newTestApp(t)
	app := NewApp(Options{ContactRateLimit: 1})

	payload := fiber.Map{"name": "Lin", "email": "lin@example.com", "subject": "Course pricing", "message": "Do you offer student discounts?"}
	status, _ := call(t, app, "POST", "/api/contact", "", payload)
	assert.Equal(t, fiber.StatusCreated, status)

	status, body := call(t, app, "POST", "/api/contact", "", payload)
	assert.Equal(t, fiber.StatusTooManyRequests, status)
	assert.False(t, body.Status)
}

func uploadThumbnail(t *testing.T, app *fiber.App, courseID uint, token, filename, partType string, content []byte) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="thumbnail"; filename="%s"`, filename))
	header.Set("Content-Type", partType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", path("/api/courses/:id/thumbnail", courseID), &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestUploadThumbnail(t *testing.T) {
	app := newTestApp(t)
	dir := t.TempDir()
	previous := utils.Files
	utils.Files = utils.NewLocalStore(dir, "/uploads")
	t.Cleanup(func() { utils.Files = previous })

	instructor, instructorToken := createUser(t, "Mentor", models.RoleInstructor, models.UserStatusActive)
	_, studentToken := createUser(t, "Student", models.RoleStudent, models.UserStatusActive)
	course := createCourse(t, instructor, nil)

	stored := func() []string {
		files, err := filepath.Glob(filepath.Join(dir, "course-thumbnails", "*"))
		require.NoError(t, err)
		return files
	}
	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 64)...)

	status, _ := uploadThumbnail(t, app, course.ID, studentToken, "cover.png", "image/png", png)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body := uploadThumbnail(t, app, course.ID, instructorToken, "x.html", "image/png",
		[]byte("<script>alert(document.cookie)</script>"))
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "thumbnail", body.Errors[0].Field)
	assert.Empty(t, stored())

	oversized := append(append([]byte{}, png...), bytes.Repeat([]byte{0}, 5<<20)...)
	status, body = uploadThumbnail(t, app, course.ID, instructorToken, "big.png", "image/png", oversized)
	require.Equal(t, fiber.StatusBadRequest, status)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, "Thumbnail must not exceed 5MB", body.Errors[0].Message)
	assert.Empty(t, stored())

	// the stored name and type follow the bytes, not the client's filename or part header
	status, body = uploadThumbnail(t, app, course.ID, instructorToken, "cover.html", "text/html", png)
	require.Equal(t, fiber.StatusOK, status, body.Message)
	thumbnail := decode[models.Course](t, body.Data).Thumbnail
	assert.True(t, strings.HasPrefix(thumbnail, "/uploads/course-thumbnails/"), thumbnail)
	assert.True(t, strings.HasSuffix(thumbnail, ".png"), thumbnail)

	files := stored()
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Base(thumbnail), filepath.Base(files[0]))
	saved, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, png, saved)

	var reloaded models.Course
	require.NoError(t, database.Database.Db.First(&reloaded, course.ID).Error)
	assert.Equal(t, thumbnail, reloaded.Thumbnail)
}

func TestEnrollReportsStorageErrors(t *testing.T) {
	app := newTestApp(t)
	instructor, _ := createUser(t, "Mentor", models.RoleInstructor, models.UserStatusActive)
	_, token := createUser(t, "Student", models.RoleStudent, models.UserStatusActive)
	course := createCourse(t, instructor, nil)

	require.NoError(t, database.Database.Db.Migrator().DropTable(&models.Enrollment{}))

	status, body := call(t, app, "POST", path("/api/enrollments/enroll/:id", course.ID), token, nil)
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.False(t, body.Status)
}

func TestUpdateProfileRejectsTakenEmail(t *testing.T) {
	app := newTestApp(t)
	user, token := createUser(t, "Student", models.RoleStudent, models.UserStatusActive)
	other, _ := createUser(t, "Classmate", models.RoleStudent, models.UserStatusActive)

	status, body := call(t, app, "PUT", "/api/users/profile", token, fiber.Map{"email": other.Email})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Email already in use", body.Message)

	var reloaded models.User
	require.NoError(t, database.Database.Db.First(&reloaded, user.ID).Error)
	assert.Equal(t, user.Email, reloaded.Email)

	status, body = call(t, app, "PUT", "/api/users/profile", token, fiber.Map{"email": "fresh@example.com"})
	require.Equal(t, fiber.StatusOK, status, body.Message)
	assert.Equal(t, "fresh@example.com", decode[models.User](t, body.Data).Email)
}

func TestContactSubmissionNotifiesPendingAdmin(t *testing.T) {
	app := newTestApp(t)
	admin, _ := createUser(t, "Admin", models.RoleAdmin, models.UserStatusPending)

	status, body := call(t, app, "POST", "/api/contact", "", fiber.Map{
		"name": "Lin", "email": "lin@example.com", "subject": "Course pricing", "message": "Do you offer student discounts?",
	})
	require.Equal(t, fiber.StatusCreated, status, body.Message)

	assert.Eventually(t, func() bool {
		list, err := database.Notifications.ListNotifications(context.Background(), admin.ID, 10)
		return err == nil && len(list) == 1
	}, 2*time.Second, 20*time.Millisecond)
}

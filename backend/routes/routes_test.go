package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"project/backend/config"
	"project/backend/middleware"
	"project/backend/models"
	"project/backend/routes"
	"project/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupApp wires the full application against the test database. Tests
// are skipped when Postgres is unreachable.
func setupApp(t *testing.T) (*fiber.App, *config.Config) {
	t.Helper()

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	cfg.DBName = cfg.DBName + "_test"
	cfg.JWTSecret = "testsecret"

	db, err := utils.InitDB(cfg)
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}

	logger := utils.InitLogger()
	app := fiber.New()
	app.Use(middleware.LoggingMiddleware(logger))
	routes.SetupRoutes(app, db, cfg, logger)

	// Promote every user registered by this test run to admin so the
	// authoring endpoints are reachable.
	t.Cleanup(func() {
		db.Exec("DELETE FROM users WHERE university = ?", "Test University")
	})

	return app, cfg
}

func registerAdmin(t *testing.T, app *fiber.App, cfg *config.Config) string {
	t.Helper()

	name := "tester-" + uuid.NewString()[:8]
	body, _ := json.Marshal(fiber.Map{
		"username":   name,
		"email":      name + "@example.com",
		"password":   "longpassword",
		"university": "Test University",
	})
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	db, err := utils.InitDB(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", result.User.ID).Update("role", "admin").Error)

	return result.Token
}

func doJSON(t *testing.T, app *fiber.App, token, method, path string, payload interface{}) (*fiber.Map, int) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewBuffer(data)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := app.Test(req)
	require.NoError(t, err)

	var result fiber.Map
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return &result, resp.StatusCode
}

func TestCourseProgressionFlow(t *testing.T) {
	app, cfg := setupApp(t)
	token := registerAdmin(t, app, cfg)

	// Build a subject: one chapter, one lesson with a quiz.
	result, status := doJSON(t, app, token, "POST", "/api/admin/subjects/", fiber.Map{
		"title": "Progression Flow " + uuid.NewString()[:8],
	})
	require.Equal(t, fiber.StatusOK, status)
	subjectID := uint((*result)["subject"].(map[string]interface{})["ID"].(float64))
	base := fmt.Sprintf("/api/subjects/%d", subjectID)

	result, status = doJSON(t, app, token, "POST", fmt.Sprintf("/api/admin/subjects/%d/quizzes", subjectID), fiber.Map{
		"title": "Lesson quiz",
		"questions": []fiber.Map{
			{
				"kind": "single_choice",
				"text": "2 + 2?",
				"choices": []fiber.Map{
					{"text": "4", "correct": true},
					{"text": "5"},
				},
			},
		},
	})
	require.Equal(t, fiber.StatusOK, status)
	quizID := uint((*result)["quiz"].(map[string]interface{})["ID"].(float64))

	_, status = doJSON(t, app, token, "POST", fmt.Sprintf("/api/admin/subjects/%d/lessons", subjectID), fiber.Map{
		"title":          "Only lesson",
		"chapter_number": 1,
		"order_number":   1,
		"video_source":   "https://youtu.be/abc123DEF45",
		"quiz_id":        quizID,
	})
	require.Equal(t, fiber.StatusOK, status)

	// Tree: video open, quiz locked behind it.
	result, status = doJSON(t, app, token, "GET", base+"/tree", nil)
	require.Equal(t, fiber.StatusOK, status)
	tree := (*result)["tree"].(map[string]interface{})
	sections := tree["sections"].([]interface{})
	require.Len(t, sections, 1)
	items := sections[0].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 2)
	assert.False(t, items[0].(map[string]interface{})["locked"].(bool))
	assert.True(t, items[1].(map[string]interface{})["locked"].(bool))

	// Selecting the locked quiz is rejected with the prerequisite.
	result, status = doJSON(t, app, token, "POST", base+"/select", fiber.Map{
		"section_id": 2, "item_id": 2,
	})
	assert.Equal(t, fiber.StatusLocked, status)
	details := (*result)["details"].(map[string]interface{})
	assert.Equal(t, "previous_item_incomplete", details["reason"])

	// Watch the lesson past the threshold: quiz unlocks.
	lessonID := uint(items[0].(map[string]interface{})["lesson_ref"].(float64))
	result, status = doJSON(t, app, token, "POST",
		fmt.Sprintf("%s/lessons/%d/video-progress", base, lessonID),
		fiber.Map{"position": 95, "duration": 100})
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, (*result)["completed"].(bool))

	_, status = doJSON(t, app, token, "POST", base+"/select", fiber.Map{
		"section_id": 2, "item_id": 2,
	})
	assert.Equal(t, fiber.StatusOK, status)

	// The quiz hides its answer key from learners.
	result, status = doJSON(t, app, token, "GET", fmt.Sprintf("%s/quizzes/%d", base, quizID), nil)
	require.Equal(t, fiber.StatusOK, status)
	questions := (*result)["questions"].([]interface{})
	require.Len(t, questions, 1)
	choices := questions[0].(map[string]interface{})["choices"].([]interface{})
	_, exposed := choices[0].(map[string]interface{})["correct"]
	assert.False(t, exposed)

	// Submit the correct answer: passed, item completes.
	questionID := uint(questions[0].(map[string]interface{})["id"].(float64))
	choiceID := uint(choices[0].(map[string]interface{})["id"].(float64))
	result, status = doJSON(t, app, token, "POST",
		fmt.Sprintf("%s/quizzes/%d/submit", base, quizID),
		fiber.Map{"answers": []fiber.Map{{"question_id": questionID, "choice_ids": []uint{choiceID}}}})
	require.Equal(t, fiber.StatusOK, status)
	attempt := (*result)["attempt"].(map[string]interface{})
	assert.True(t, attempt["passed"].(bool))

	// Attempt history records the submission.
	result, status = doJSON(t, app, token, "GET",
		fmt.Sprintf("%s/quizzes/%d/attempts", base, quizID), nil)
	require.Equal(t, fiber.StatusOK, status)
}

func TestAuthRequired(t *testing.T) {
	app, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/api/subjects/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

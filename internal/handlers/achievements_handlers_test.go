package handlers

import (
	"fmt"
	"net/http"
	"testing"
)

func listAchievements(t *testing.T, env *testEnv, token, path string) (ids []int64, next *int64) {
	t.Helper()

	resp := performJSONRequest(t, env.app, http.MethodGet, path, nil, authHeaders(token))
	assertStatus(t, resp, http.StatusOK)

	data := envelopeData(t, decodeJSONMap(t, resp))
	entries, ok := data["achievements"].([]any)
	if !ok {
		t.Fatalf("expected achievements array, got %T", data["achievements"])
	}
	for _, entry := range entries {
		ids = append(ids, int64(entry.(map[string]any)["id"].(float64)))
	}
	if raw, ok := data["next"].(float64); ok {
		cursor := int64(raw)
		next = &cursor
	}
	return ids, next
}

func TestAchievementCreate(t *testing.T) {
	t.Run("creates an achievement owned by the caller", func(t *testing.T) {
		env := setupTestEnv(t)
		user, token := createTestUser(t, env.db, "ach@example.com", "password123")

		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/v1/achievements/", map[string]any{
			"title":    "5k run",
			"content":  "finished in 28 minutes",
			"photoURL": "http://storage.test/run.jpg",
		}, authHeaders(token))
		assertStatus(t, resp, http.StatusCreated)

		data := envelopeData(t, decodeJSONMap(t, resp))
		if data["title"] != "5k run" {
			t.Fatalf("expected title to round-trip, got %v", data["title"])
		}
		if data["userID"] != user.ID.String() {
			t.Fatalf("expected author %s, got %v", user.ID, data["userID"])
		}
		if _, hasGroup := data["groupID"]; hasGroup {
			t.Fatal("personal achievements must not carry a group id")
		}
	})

	t.Run("requires title and photo", func(t *testing.T) {
		env := setupTestEnv(t)
		_, token := createTestUser(t, env.db, "ach@example.com", "password123")

		noTitle := performJSONRequest(t, env.app, http.MethodPost, "/api/v1/achievements/", map[string]any{
			"photoURL": "http://storage.test/run.jpg",
		}, authHeaders(token))
		assertStatus(t, noTitle, http.StatusBadRequest)
		noTitle.Body.Close()

		noPhoto := performJSONRequest(t, env.app, http.MethodPost, "/api/v1/achievements/", map[string]any{
			"title": "5k run",
		}, authHeaders(token))
		assertStatus(t, noPhoto, http.StatusBadRequest)
		noPhoto.Body.Close()
	})

	t.Run("rejects a category outside the scope", func(t *testing.T) {
		env := setupTestEnv(t)
		_, token := createTestUser(t, env.db, "ach@example.com", "password123")
		groupID, _ := createTestGroup(t, env, token, "Team")
		groupCategory := createTestCategory(t, env, token, "/api/v1/groups/"+groupID+"/categories", "Group only")

		resp := performJSONRequest(t, env.app, http.MethodPost, "/api/v1/achievements/", map[string]any{
			"title":      "5k run",
			"photoURL":   "http://storage.test/run.jpg",
			"categoryID": groupCategory,
		}, authHeaders(token))
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "category not found")
	})
}

func TestAchievementList(t *testing.T) {
	t.Run("pages newest-first with strictly older cursors", func(t *testing.T) {
		env := setupTestEnv(t)
		_, token := createTestUser(t, env.db, "ach@example.com", "password123")

		var created []int64
		for i := 0; i < 5; i++ {
			created = append(created, createTestAchievement(t, env, token, "/api/v1/achievements/", nil))
		}

		firstPage, next := listAchievements(t, env, token, "/api/v1/achievements/?take=2")
		if len(firstPage) != 2 {
			t.Fatalf("expected page of 2, got %d", len(firstPage))
		}
		if firstPage[0] != created[4] || firstPage[1] != created[3] {
			t.Fatalf("expected newest first, got %v", firstPage)
		}
		if next == nil || *next != created[3] {
			t.Fatalf("expected cursor %d, got %v", created[3], next)
		}

		secondPage, next2 := listAchievements(t, env, token, fmt.Sprintf("/api/v1/achievements/?take=2&whereIdLessThan=%d", *next))
		if len(secondPage) != 2 {
			t.Fatalf("expected second page of 2, got %d", len(secondPage))
		}
		for _, id := range secondPage {
			if id >= *next {
				t.Fatalf("cursor page must be strictly older than %d, got %d", *next, id)
			}
		}

		thirdPage, next3 := listAchievements(t, env, token, fmt.Sprintf("/api/v1/achievements/?take=2&whereIdLessThan=%d", *next2))
		if len(thirdPage) != 1 {
			t.Fatalf("expected final page of 1, got %d", len(thirdPage))
		}
		if next3 != nil {
			t.Fatalf("expected exhausted listing to have no cursor, got %v", next3)
		}
	})

	t.Run("filters by category including sentinels", func(t *testing.T) {
		env := setupTestEnv(t)
		_, token := createTestUser(t, env.db, "ach@example.com", "password123")

		category := createTestCategory(t, env, token, "/api/v1/categories/", "Running")
		inCategory := createTestAchievement(t, env, token, "/api/v1/achievements/", &category)
		uncategorized := createTestAchievement(t, env, token, "/api/v1/achievements/", nil)

		all, _ := listAchievements(t, env, token, "/api/v1/achievements/?categoryId=0")
		if len(all) != 2 {
			t.Fatalf("category 0 means everything, got %d", len(all))
		}

		filtered, _ := listAchievements(t, env, token, fmt.Sprintf("/api/v1/achievements/?categoryId=%d", category))
		if len(filtered) != 1 || filtered[0] != inCategory {
			t.Fatalf("expected only the categorized achievement, got %v", filtered)
		}

		unassigned, _ := listAchievements(t, env, token, "/api/v1/achievements/?categoryId=-1")
		if len(unassigned) != 1 || unassigned[0] != uncategorized {
			t.Fatalf("expected only the uncategorized achievement, got %v", unassigned)
		}
	})

	t.Run("personal and group scopes stay separate", func(t *testing.T) {
		env := setupTestEnv(t)
		_, token := createTestUser(t, env.db, "ach@example.com", "password123")
		groupID, _ := createTestGroup(t, env, token, "Team")

		personal := createTestAchievement(t, env, token, "/api/v1/achievements/", nil)
		shared := createTestAchievement(t, env, token, "/api/v1/groups/"+groupID+"/achievements", nil)

		personalIDs, _ := listAchievements(t, env, token, "/api/v1/achievements/")
		if len(personalIDs) != 1 || personalIDs[0] != personal {
			t.Fatalf("expected only the personal achievement, got %v", personalIDs)
		}

		groupIDs, _ := listAchievements(t, env, token, "/api/v1/groups/"+groupID+"/achievements")
		if len(groupIDs) != 1 || groupIDs[0] != shared {
			t.Fatalf("expected only the group achievement, got %v", groupIDs)
		}
	})
}

func TestAchievementGet(t *testing.T) {
	t.Run("members see each other's group achievements", func(t *testing.T) {
		env := setupTestEnv(t)
		_, leaderToken := createTestUser(t, env.db, "leader@example.com", "password123")
		_, memberToken := createTestUser(t, env.db, "member@example.com", "password123")
		groupID, groupCode := createTestGroup(t, env, leaderToken, "Team")

		join := performJSONRequest(t, env.app, http.MethodPost, "/api/v1/groups/join", map[string]any{"groupCode": groupCode}, authHeaders(memberToken))
		assertStatus(t, join, http.StatusCreated)
		join.Body.Close()

		id := createTestAchievement(t, env, leaderToken, "/api/v1/groups/"+groupID+"/achievements", nil)

		resp := performJSONRequest(t, env.app, http.MethodGet, fmt.Sprintf("/api/v1/groups/%s/achievements/%d", groupID, id), nil, authHeaders(memberToken))
		assertStatus(t, resp, http.StatusOK)

		data := envelopeData(t, decodeJSONMap(t, resp))
		author, ok := data["user"].(map[string]any)
		if !ok {
			t.Fatalf("expected the author to be embedded, got %T", data["user"])
		}
		if author["email"] == nil {
			t.Fatal("expected author details to be loaded")
		}
	})

	t.Run("unknown achievement returns 404", func(t *testing.T) {
		env := setupTestEnv(t)
		_, token := createTestUser(t, env.db, "ach@example.com", "password123")

		resp := performJSONRequest(t, env.app, http.MethodGet, "/api/v1/achievements/424242", nil, authHeaders(token))
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "achievement not found")
	})
}

func TestAchievementUpdate(t *testing.T) {
	t.Run("author edits title and clears the category", func(t *testing.T) {
		env := setupTestEnv(t)
		_, token := createTestUser(t, env.db, "ach@example.com", "password123")

		category := createTestCategory(t, env, token, "/api/v1/categories/", "Running")
		id := createTestAchievement(t, env, token, "/api/v1/achievements/", &category)

		resp := performJSONRequest(t, env.app, http.MethodPut, fmt.Sprintf("/api/v1/achievements/%d", id), map[string]any{
			"title":      "10k run",
			"categoryID": -1,
		}, authHeaders(token))
		assertStatus(t, resp, http.StatusOK)

		data := envelopeData(t, decodeJSONMap(t, resp))
		if data["title"] != "10k run" {
			t.Fatalf("expected updated title, got %v", data["title"])
		}
		if _, hasCategory := data["categoryID"]; hasCategory {
			t.Fatalf("expected category to be cleared, got %v", data["categoryID"])
		}
	})

	t.Run("only the author may edit", func(t *testing.T) {
		env := setupTestEnv(t)
		_, leaderToken := createTestUser(t, env.db, "leader@example.com", "password123")
		_, memberToken := createTestUser(t, env.db, "member@example.com", "password123")
		groupID, groupCode := createTestGroup(t, env, leaderToken, "Team")

		join := performJSONRequest(t, env.app, http.MethodPost, "/api/v1/groups/join", map[string]any{"groupCode": groupCode}, authHeaders(memberToken))
		assertStatus(t, join, http.StatusCreated)
		join.Body.Close()

		id := createTestAchievement(t, env, leaderToken, "/api/v1/groups/"+groupID+"/achievements", nil)

		resp := performJSONRequest(t, env.app, http.MethodPut, fmt.Sprintf("/api/v1/groups/%s/achievements/%d", groupID, id), map[string]any{
			"title": "hijacked",
		}, authHeaders(memberToken))
		assertStatus(t, resp, http.StatusNotFound)
		assertEnvelopeError(t, decodeJSONMap(t, resp), "achievement not found")
	})
}

func TestAchievementDelete(t *testing.T) {
	t.Run("author deletes own achievement", func(t *testing.T) {
		env := setupTestEnv(t)
		_, token := createTestUser(t, env.db, "ach@example.com", "password123")

		id := createTestAchievement(t, env, token, "/api/v1/achievements/", nil)

		resp := performJSONRequest(t, env.app, http.MethodDelete, fmt.Sprintf("/api/v1/achievements/%d", id), nil, authHeaders(token))
		assertStatus(t, resp, http.StatusOK)
		resp.Body.Close()

		gone := performJSONRequest(t, env.app, http.MethodGet, fmt.Sprintf("/api/v1/achievements/%d", id), nil, authHeaders(token))
		assertStatus(t, gone, http.StatusNotFound)
		gone.Body.Close()
	})

	t.Run("non-authors get 404", func(t *testing.T) {
		env := setupTestEnv(t)
		_, leaderToken := createTestUser(t, env.db, "leader@example.com", "password123")
		_, memberToken := createTestUser(t, env.db, "member@example.com", "password123")
		groupID, groupCode := createTestGroup(t, env, leaderToken, "Team")

		join := performJSONRequest(t, env.app, http.MethodPost, "/api/v1/groups/join", map[string]any{"groupCode": groupCode}, authHeaders(memberToken))
		assertStatus(t, join, http.StatusCreated)
		join.Body.Close()

		id := createTestAchievement(t, env, leaderToken, "/api/v1/groups/"+groupID+"/achievements", nil)

		resp := performJSONRequest(t, env.app, http.MethodDelete, fmt.Sprintf("/api/v1/groups/%s/achievements/%d", groupID, id), nil, authHeaders(memberToken))
		assertStatus(t, resp, http.StatusNotFound)
	})
}

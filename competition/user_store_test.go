package competition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanhai/arena/errors"
	arenatest "github.com/nanhai/arena/internal/testing"
)

func TestUserStore_CreateAndGet(t *testing.T) {
	store := NewUserStore(arenatest.CreateTestDB(t))

	created, err := store.Create(&User{
		UserName:    "张三",
		EmployID:    "00123456",
		UserEngName: "zhangsan",
		GroupType:   GroupAI,
		SubGroup:    "AI-1小组",
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
	assert.Equal(t, NotDeleted, created.IsDeleted)

	got, err := store.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "张三", got.UserName)
	assert.Equal(t, "00123456", got.EmployID)
	assert.Equal(t, GroupAI, got.GroupType)
	assert.Equal(t, "AI-1小组", got.SubGroup)
}

func TestUserStore_GetByEmployID(t *testing.T) {
	store := NewUserStore(arenatest.CreateTestDB(t))

	created, err := store.Create(&User{UserName: "李四", EmployID: "00654321"})
	require.NoError(t, err)

	t.Run("finds active user", func(t *testing.T) {
		got, err := store.GetByEmployID("00654321")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})

	t.Run("not found for unknown employ id", func(t *testing.T) {
		_, err := store.GetByEmployID("99999999")
		require.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("soft-deleted user is invisible", func(t *testing.T) {
		require.NoError(t, store.SoftDelete(created.ID))

		_, err := store.GetByEmployID("00654321")
		require.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))

		// Still reachable by id
		got, err := store.GetByID(created.ID)
		require.NoError(t, err)
		assert.Equal(t, Deleted, got.IsDeleted)
	})

	t.Run("restore makes user visible again", func(t *testing.T) {
		require.NoError(t, store.Restore(created.ID))

		got, err := store.GetByEmployID("00654321")
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	})
}

func TestUserStore_ListActiveAndAll(t *testing.T) {
	store := NewUserStore(arenatest.CreateTestDB(t))

	u1, err := store.Create(&User{UserName: "a", EmployID: "00000001"})
	require.NoError(t, err)
	_, err = store.Create(&User{UserName: "b", EmployID: "00000002"})
	require.NoError(t, err)

	require.NoError(t, store.SoftDelete(u1.ID))

	active, err := store.ListActive()
	require.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, "b", active[0].UserName)

	all, err := store.ListAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUserStore_Update(t *testing.T) {
	store := NewUserStore(arenatest.CreateTestDB(t))

	created, err := store.Create(&User{UserName: "old", EmployID: "00000003"})
	require.NoError(t, err)

	created.UserName = "new"
	created.GroupType = GroupNonAI
	created.SubGroup = "非AI-1小组"

	updated, err := store.Update(created)
	require.NoError(t, err)
	assert.Equal(t, "new", updated.UserName)
	assert.Equal(t, GroupNonAI, updated.GroupType)

	t.Run("not found for missing user", func(t *testing.T) {
		_, err := store.Update(&User{ID: 9999, UserName: "x"})
		require.Error(t, err)
		assert.True(t, errors.IsNotFoundError(err))
	})
}

func TestUserStore_Counts(t *testing.T) {
	store := NewUserStore(arenatest.CreateTestDB(t))

	users := []*User{
		{UserName: "a", EmployID: "00000010", GroupType: GroupAI, SubGroup: "AI-1小组"},
		{UserName: "b", EmployID: "00000011", GroupType: GroupAI, SubGroup: "AI-2小组"},
		{UserName: "c", EmployID: "00000012", GroupType: GroupNonAI, SubGroup: "非AI-1小组"},
	}
	for _, u := range users {
		_, err := store.Create(u)
		require.NoError(t, err)
	}

	total, err := store.CountActive()
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	ai, err := store.CountByGroup(GroupAI)
	require.NoError(t, err)
	assert.Equal(t, 2, ai)

	sub, err := store.CountBySubGroup("AI-1小组")
	require.NoError(t, err)
	assert.Equal(t, 1, sub)
}

func TestUserStore_DuplicateEmployID(t *testing.T) {
	store := NewUserStore(arenatest.CreateTestDB(t))

	_, err := store.Create(&User{UserName: "a", EmployID: "00000020"})
	require.NoError(t, err)

	_, err = store.Create(&User{UserName: "b", EmployID: "00000020"})
	require.Error(t, err, "employ_id is unique")
}

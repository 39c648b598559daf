package store

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vibechat-service/internal/mocks"
	"vibechat-service/internal/models"
)

type connFixture struct {
	store    *ConnectionStore
	conns    *mocks.ConnectionServiceMock
	blocks   *mocks.BlockServiceMock
	profiles *mocks.ProfileServiceMock
	changed  int
}

func newConnFixture() *connFixture {
	f := &connFixture{
		conns:    new(mocks.ConnectionServiceMock),
		blocks:   new(mocks.BlockServiceMock),
		profiles: new(mocks.ProfileServiceMock),
	}
	f.store = NewConnectionStore(ConnectionStoreConfig{
		UserID:       "u1",
		Connections:  f.conns,
		Blocks:       f.blocks,
		Profiles:     f.profiles,
		ChatsChanged: func(context.Context) { f.changed++ },
		Log:          zerolog.Nop(),
	})
	return f
}

func (f *connFixture) expectRefresh(repaired int, friends []models.Profile, requests []models.ConnectionRequest) {
	f.conns.On("RepairMissingChats", mock.Anything, "u1").Return(repaired).Once()
	f.conns.On("GetFriends", mock.Anything, "u1").Return(friends).Once()
	f.conns.On("GetPendingRequests", mock.Anything, "u1").Return(requests).Once()
	f.blocks.On("GetBlockedUsers", mock.Anything, "u1").Return([]models.Profile{}).Once()
}

func TestConnectionRefreshLoadsRequestProfiles(t *testing.T) {
	f := newConnFixture()
	f.expectRefresh(0, []models.Profile{{ID: "u2"}}, []models.ConnectionRequest{
		{ID: "r1", FromUserID: "u3", ToUserID: "u1", Status: models.ConnectionPending},
		{ID: "r2", FromUserID: "u4", ToUserID: "u1", Status: models.ConnectionPending},
	})
	f.profiles.On("GetProfile", mock.Anything, "u3").Return(models.Profile{ID: "u3", Username: "cat"}, true).Once()
	f.profiles.On("GetProfile", mock.Anything, "u4").Return(models.Profile{}, false).Once()

	f.store.Refresh(context.Background())

	assert.Equal(t, []string{"u2"}, f.store.FriendIDs())
	reqs := f.store.Requests()
	require.Len(t, reqs, 2)
	require.NotNil(t, reqs[0].From)
	assert.Equal(t, "cat", reqs[0].From.Username)
	assert.Nil(t, reqs[1].From)
	assert.Equal(t, 0, f.changed)
}

func TestConnectionRefreshRepairNotifiesChats(t *testing.T) {
	f := newConnFixture()
	f.expectRefresh(2, []models.Profile{}, []models.ConnectionRequest{})

	f.store.Refresh(context.Background())
	assert.Equal(t, 1, f.changed)
}

func TestSendRequestRules(t *testing.T) {
	f := newConnFixture()
	f.blocks.On("IsBlocked", mock.Anything, "u1", "u2").Return(true).Once()
	f.blocks.On("IsBlocked", mock.Anything, "u1", "u3").Return(false).Once()
	f.blocks.On("IsBlocked", mock.Anything, "u1", "u4").Return(false).Once()
	f.conns.On("SendRequest", mock.Anything, "u1", "u3").Return(true).Once()
	f.conns.On("SendRequest", mock.Anything, "u1", "u4").Return(false).Once()

	ctx := context.Background()
	assert.ErrorIs(t, f.store.SendRequest(ctx, "u1"), ErrSelfRequest)
	assert.ErrorIs(t, f.store.SendRequest(ctx, "u2"), ErrBlocked)
	assert.NoError(t, f.store.SendRequest(ctx, "u3"))
	assert.ErrorIs(t, f.store.SendRequest(ctx, "u4"), ErrRequestFailed)
	f.conns.AssertNotCalled(t, "SendRequest", mock.Anything, "u1", "u2")
}

func TestAcceptRequestRefreshesChats(t *testing.T) {
	f := newConnFixture()
	f.expectRefresh(0, []models.Profile{}, []models.ConnectionRequest{{ID: "r1", FromUserID: "u3", ToUserID: "u1"}})
	f.profiles.On("GetProfile", mock.Anything, "u3").Return(models.Profile{ID: "u3"}, true).Once()
	f.store.Refresh(context.Background())

	f.conns.On("AcceptRequest", mock.Anything, "r1", "u1").Return(models.ConnectionRequest{ID: "r1", Status: models.ConnectionAccepted}, "c7", true).Once()
	f.expectRefresh(0, []models.Profile{{ID: "u3"}}, []models.ConnectionRequest{})

	chatID, err := f.store.AcceptRequest(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "c7", chatID)
	assert.Empty(t, f.store.Requests())
	assert.Equal(t, []string{"u3"}, f.store.FriendIDs())
	assert.Equal(t, 1, f.changed)
}

func TestAcceptRequestFailure(t *testing.T) {
	f := newConnFixture()
	f.conns.On("AcceptRequest", mock.Anything, "r1", "u1").Return(models.ConnectionRequest{}, "", false).Once()

	_, err := f.store.AcceptRequest(context.Background(), "r1")
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, 0, f.changed)
}

func TestRejectRequestRemovesLocally(t *testing.T) {
	f := newConnFixture()
	f.expectRefresh(0, []models.Profile{}, []models.ConnectionRequest{{ID: "r1", FromUserID: "u3"}, {ID: "r2", FromUserID: "u4"}})
	f.profiles.On("GetProfile", mock.Anything, mock.Anything).Return(models.Profile{}, false)
	f.store.Refresh(context.Background())

	f.conns.On("RejectRequest", mock.Anything, "r1", "u1").Return(true).Once()
	require.NoError(t, f.store.RejectRequest(context.Background(), "r1"))

	reqs := f.store.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "r2", reqs[0].ID)
}

func TestSearchUsersSkipsSelfAndBlank(t *testing.T) {
	f := newConnFixture()
	f.profiles.On("SearchProfiles", mock.Anything, "an", "u1").Return([]models.Profile{{ID: "u1"}, {ID: "u2"}}).Once()

	assert.Empty(t, f.store.SearchUsers(context.Background(), " "))
	found := f.store.SearchUsers(context.Background(), " an")
	require.Len(t, found, 1)
	assert.Equal(t, "u2", found[0].ID)
}

func TestBlockAndUnblock(t *testing.T) {
	f := newConnFixture()
	f.blocks.On("BlockUser", mock.Anything, "u1", "u2").Return(true).Once()
	f.blocks.On("GetBlockedUsers", mock.Anything, "u1").Return([]models.Profile{{ID: "u2"}}).Once()
	f.conns.On("GetFriends", mock.Anything, "u1").Return([]models.Profile{}).Once()
	f.blocks.On("UnblockUser", mock.Anything, "u1", "u2").Return(true).Once()

	ctx := context.Background()
	assert.ErrorIs(t, f.store.BlockUser(ctx, "u1"), ErrSelfRequest)
	require.NoError(t, f.store.BlockUser(ctx, "u2"))
	assert.Len(t, f.store.BlockedUsers(), 1)

	require.NoError(t, f.store.UnblockUser(ctx, "u2"))
	assert.Empty(t, f.store.BlockedUsers())
}

package messagesvc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	empmodels "qced_directory/internal/api/employee/models"
	models "qced_directory/internal/api/message/models"
)

func TestDirectConversationID_IsOrderIndependent(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	id := DirectConversationID(a, b)
	assert.Equal(t, id, DirectConversationID(b, a))

	conv, err := ParseConversationID(id)
	require.NoError(t, err)
	assert.Equal(t, models.KindDirect, conv.Kind)
	assert.ElementsMatch(t, []primitive.ObjectID{a, b}, conv.Members)
	assert.Equal(t, b, conv.Other(a))
	assert.Equal(t, a, conv.Other(b))
}

func TestParseConversationID(t *testing.T) {
	emp := primitive.NewObjectID()
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	conv, err := ParseConversationID(RoleConversationID(empmodels.RoleHR, emp))
	require.NoError(t, err)
	assert.Equal(t, models.KindRole, conv.Kind)
	assert.Equal(t, empmodels.RoleHR, conv.Role)
	assert.Equal(t, []primitive.ObjectID{emp}, conv.Members)

	low, high := a.Hex(), b.Hex()
	if high < low {
		low, high = high, low
	}
	invalid := []string{
		"",
		"dm:" + high + ":" + low, // sai thứ tự
		"dm:" + low + ":" + low,
		"dm:" + low,
		"role:manager:" + emp.Hex(),
		"role:hr:not-an-id",
		"group:x:y",
	}
	for _, id := range invalid {
		_, err := ParseConversationID(id)
		assert.Error(t, err, id)
	}
}

func TestConversationAccess(t *testing.T) {
	emp, other := primitive.NewObjectID(), primitive.NewObjectID()
	conv, err := ParseConversationID(RoleConversationID(empmodels.RoleHR, emp))
	require.NoError(t, err)

	assert.True(t, conv.CanAccess(emp, empmodels.RoleEmployee))
	assert.True(t, conv.CanAccess(other, empmodels.RoleHR))
	assert.False(t, conv.CanAccess(other, empmodels.RoleAdmin))
	assert.False(t, conv.CanAccess(other, empmodels.RoleManager))
	assert.Equal(t, primitive.NilObjectID, conv.Other(emp))
}

func TestAddresseeAndAccess(t *testing.T) {
	sender, recipient, hr := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	dm := &models.Message{Sender: sender, Participants: []primitive.ObjectID{sender, recipient}, ReadBy: []primitive.ObjectID{sender}}

	assert.False(t, IsAddressee(dm, sender, empmodels.RoleEmployee))
	assert.True(t, IsAddressee(dm, recipient, empmodels.RoleEmployee))
	assert.False(t, IsAddressee(dm, hr, empmodels.RoleHR))
	assert.False(t, CanAccessMessage(dm, hr, empmodels.RoleHR))
	assert.True(t, dm.IsReadBy(sender))
	assert.False(t, dm.IsReadBy(recipient))

	toHR := &models.Message{Sender: sender, Participants: []primitive.ObjectID{sender}, ToRole: empmodels.RoleHR}
	assert.True(t, IsAddressee(toHR, hr, empmodels.RoleHR))
	assert.True(t, CanAccessMessage(toHR, hr, empmodels.RoleHR))
	assert.False(t, CanAccessMessage(toHR, recipient, empmodels.RoleAdmin))
}

func TestCanDeleteMessage_AdminOutsideConversation(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	admin, hr := primitive.NewObjectID(), primitive.NewObjectID()
	dm := &models.Message{Sender: a, Participants: []primitive.ObjectID{a, b}, ConversationID: DirectConversationID(a, b)}

	// admin không phải thành viên vẫn được xóa
	assert.False(t, CanAccessMessage(dm, admin, empmodels.RoleAdmin))
	assert.True(t, CanDeleteMessage(dm, admin, empmodels.RoleAdmin))

	assert.True(t, CanDeleteMessage(dm, a, empmodels.RoleEmployee))
	assert.False(t, CanDeleteMessage(dm, b, empmodels.RoleEmployee), "người nhận không được xóa")
	assert.False(t, CanDeleteMessage(dm, hr, empmodels.RoleHR))
}

func TestNeedsRoleAlert(t *testing.T) {
	emp, admin := primitive.NewObjectID(), primitive.NewObjectID()
	convID := RoleConversationID(empmodels.RoleHR, emp)

	fromEmployee := &models.Message{Sender: emp, ToRole: empmodels.RoleHR, ConversationID: convID}
	assert.True(t, NeedsRoleAlert(fromEmployee))

	staffReply := &models.Message{Sender: admin, ToRole: empmodels.RoleHR, ConversationID: convID, Recipient: &emp}
	assert.False(t, NeedsRoleAlert(staffReply), "admin trả lời trong hội thoại hr")

	dm := &models.Message{Sender: emp, ConversationID: DirectConversationID(emp, admin)}
	assert.False(t, NeedsRoleAlert(dm))
}

func TestUnreadFilter(t *testing.T) {
	user := primitive.NewObjectID()

	filter := UnreadFilter(user, empmodels.RoleHR, 1700000000000)
	assert.Equal(t, bson.M{"$ne": user}, filter["sender"])
	assert.Equal(t, bson.M{"$ne": user}, filter["readBy"])
	assert.Equal(t, bson.M{"$gt": int64(1700000000000)}, filter["createdAt"])
	assert.Equal(t, bson.M{"$exists": false}, filter["deletedAt"])
	assert.Equal(t, bson.A{bson.M{"participants": user}, bson.M{"toRole": empmodels.RoleHR}}, filter["$or"])

	filter = UnreadFilter(user, empmodels.RoleManager, 0)
	assert.NotContains(t, filter, "createdAt")
	assert.Equal(t, bson.A{bson.M{"participants": user}}, filter["$or"], "manager không nhận tin theo role")
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, int64(50), ClampLimit(0))
	assert.Equal(t, int64(10), ClampLimit(10))
	assert.Equal(t, int64(200), ClampLimit(1000))
}

func TestMergeParticipants(t *testing.T) {
	a, b, c := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	list := []primitive.ObjectID{a}
	merged := MergeParticipants(list, a, b, c, b)
	assert.Equal(t, []primitive.ObjectID{a, b, c}, merged)
	assert.Len(t, list, 1, "không sửa slice gốc")
	assert.Equal(t, []primitive.ObjectID{a}, MergeParticipants(nil, a))
}

package apiclient

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-portal/internal/models"
	appErrors "github.com/noah-isme/school-portal/pkg/errors"
)

func TestDecodeListChecksKeysInOrder(t *testing.T) {
	raw := json.RawMessage(`{"students":[{"_id":"b"}],"studentData":[{"_id":"a"}]}`)

	list, err := DecodeList[models.Student](raw, "studentData", "students")

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].ID)
}

func TestDecodeListAcceptsBareArray(t *testing.T) {
	list, err := DecodeList[models.Course](json.RawMessage(`[{"_id":"c1","title":"Science"}]`), "courses")

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Science", list[0].Title)
}

func TestDecodeListShapeErrors(t *testing.T) {
	cases := []string{
		`{"unexpected":[]}`,
		`{"students":{"_id":"x"}}`,
		`"nope"`,
		`{"students":[{"_id":5}]}`,
		``,
	}
	for _, body := range cases {
		_, err := DecodeList[models.Student](json.RawMessage(body), "studentData", "students")
		assert.True(t, appErrors.HasCode(err, appErrors.ErrShape.Code), body)
	}
}

func TestDecodeListEmptyArrayIsNotAnError(t *testing.T) {
	list, err := DecodeList[models.Book](json.RawMessage(`{"booksData":[]}`), "booksData", "books")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDecodeRecord(t *testing.T) {
	book, ok, err := DecodeRecord[models.Book](json.RawMessage(`{"newBook":{"_id":"b1","title":"Dune"}}`), "newBook")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "b1", book.ID)

	_, ok, err = DecodeRecord[models.Book](json.RawMessage(`{"message":"created"}`), "newBook")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = DecodeRecord[models.Book](json.RawMessage(`{"newBook":"b1"}`), "newBook")
	assert.True(t, appErrors.HasCode(err, appErrors.ErrShape.Code))
}

func TestDecodeObjectLoginReply(t *testing.T) {
	res, err := DecodeObject[models.LoginResult](json.RawMessage(`{"token":"t","username":"admin","userType":"Admin","_id":"u1","email":"a@b.c","phone":"1"}`))
	require.NoError(t, err)
	assert.Equal(t, "t", res.Token)
	assert.Equal(t, "admin", res.Username)
	assert.Equal(t, "u1", res.ID)
}

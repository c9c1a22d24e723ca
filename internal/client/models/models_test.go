package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripcat/internal/timex"
	"github.com/stretchr/testify/require"
)

func TestUser_Unmarshal(t *testing.T) {
	body := `{"user_id":7,"first_name":"Dana","last_name":"Levi","email":"dana@example.org","role_id":2}`

	var u User
	require.NoError(t, json.Unmarshal([]byte(body), &u))
	require.Equal(t, 7, u.ID)
	require.Equal(t, RoleAdmin, u.Role)
	require.True(t, u.IsAdmin())
	require.Equal(t, "Dana Levi", u.FullName())
}

func TestUser_FullName_PartialNames(t *testing.T) {
	require.Equal(t, "Dana", User{FirstName: "Dana"}.FullName())
	require.Equal(t, "Levi", User{LastName: "Levi"}.FullName())
}

func TestRole_String(t *testing.T) {
	require.Equal(t, "traveler", RoleTraveler.String())
	require.Equal(t, "admin", RoleAdmin.String())
	require.Equal(t, "unknown", Role(9).String())
}

func TestVacation_Unmarshal(t *testing.T) {
	body := `{
		"vacation_id": 42,
		"vacation_description": "Week in Lisbon",
		"country_id": 3,
		"vacation_start": "2026-09-10",
		"vacation_end": "2026-09-17",
		"price": 1250.5,
		"picture_file_name": "lisbon.jpg",
		"likes_count": 3
	}`

	var v Vacation
	require.NoError(t, json.Unmarshal([]byte(body), &v))
	require.Equal(t, 42, v.ID)
	require.Equal(t, timex.NewDate(2026, time.September, 10), v.Start)
	require.Equal(t, timex.NewDate(2026, time.September, 17), v.End)
	require.Equal(t, 1250.5, v.Price)
	require.Equal(t, 3, v.LikesCount)
}

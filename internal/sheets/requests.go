package sheets

import (
	"net/url"

	"github.com/logbookhq/logbook/internal/model"
)

// Gateway action names. Search is the only operation without an action
// parameter: a bare query against the record columns.
const (
	actionLogin          = "login"
	actionChangePassword = "changePassword"
	actionAddUser        = "addUser"
	actionListUsers      = "listUsers"
	actionDeleteUser     = "deleteUser"
	actionUpdate         = "update"
)

// Each operation has a typed request that knows its own wire encoding, so
// query parameters are never assembled ad hoc at call sites.

type searchRequest struct {
	Criteria model.Criteria
}

func (r searchRequest) values() url.Values {
	return url.Values{
		"logbookNumber": {r.Criteria.LogbookNumber},
		"ownerName":     {r.Criteria.OwnerName},
		"regoNumber":    {r.Criteria.RegoNumber},
	}
}

type updateRequest struct {
	Token  string
	Record model.VehicleRecord
}

func (r updateRequest) values() url.Values {
	vals := r.Record.QueryValues()
	vals.Set("action", actionUpdate)
	vals.Set("token", r.Token)
	return vals
}

type loginRequest struct {
	Username     string
	PasswordHash string
}

func (r loginRequest) values() url.Values {
	return url.Values{
		"action":       {actionLogin},
		"username":     {r.Username},
		"passwordHash": {r.PasswordHash},
	}
}

type changePasswordRequest struct {
	Token               string
	CurrentPasswordHash string
	NewPasswordHash     string
}

func (r changePasswordRequest) values() url.Values {
	return url.Values{
		"action":              {actionChangePassword},
		"token":               {r.Token},
		"currentPasswordHash": {r.CurrentPasswordHash},
		"newPasswordHash":     {r.NewPasswordHash},
	}
}

type addUserRequest struct {
	Token       string
	NewUsername string
}

func (r addUserRequest) values() url.Values {
	return url.Values{
		"action":      {actionAddUser},
		"token":       {r.Token},
		"newUsername": {r.NewUsername},
	}
}

type listUsersRequest struct {
	Token string
}

func (r listUsersRequest) values() url.Values {
	return url.Values{
		"action": {actionListUsers},
		"token":  {r.Token},
	}
}

type deleteUserRequest struct {
	Token            string
	UsernameToDelete string
}

func (r deleteUserRequest) values() url.Values {
	return url.Values{
		"action":           {actionDeleteUser},
		"token":            {r.Token},
		"usernameToDelete": {r.UsernameToDelete},
	}
}

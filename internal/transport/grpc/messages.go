package grpc

import "time"

// PersonMessage is the wire form of a person. ID is the canonical UUID
// string; BirthDate is a UTC instant.
type PersonMessage struct {
	ID           string     `json:"id,omitempty"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	NationalCode string     `json:"nationalCode"`
	BirthDate    *time.Time `json:"birthDate,omitempty"`
}

type CreatePersonRequest struct {
	Person *PersonMessage `json:"person"`
}

type CreatePersonResponse struct {
	Person *PersonMessage `json:"person"`
}

type GetPersonRequest struct {
	ID string `json:"id"`
}

type GetPersonResponse struct {
	Person *PersonMessage `json:"person"`
}

type UpdatePersonRequest struct {
	Person *PersonMessage `json:"person"`
}

type UpdatePersonResponse struct {
	Person *PersonMessage `json:"person"`
}

type DeletePersonRequest struct {
	ID string `json:"id"`
}

type DeletePersonResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type GetAllPersonsRequest struct{}

type GetAllPersonsResponse struct {
	Persons []*PersonMessage `json:"persons"`
}

package model

import (
	"context"

	"github.com/charmbracelet/log"
)

// AccessEntry is one access record of a contract.
type AccessEntry struct {
	Timestamp int64   `json:"timestamp" yaml:"timestamp"`
	ID        *string `json:"id" yaml:"id"`
}

// LocationControl positions a contract.
type LocationControl struct {
	Location float32 `json:"location" yaml:"location"`
	Enabled  bool    `json:"enabled" yaml:"enabled"`
}

// Contract is the payload handled by IContractService.
type Contract struct {
	Name            string          `json:"name" yaml:"name"`
	Value           string          `json:"value" yaml:"value"`
	LocationControl LocationControl `json:"locationControl" yaml:"locationControl"`
	Access          []AccessEntry   `json:"access" yaml:"access"`
}

// Response is the status/message pair returned by services.
type Response struct {
	Status  int    `json:"status" yaml:"status"`
	Message string `json:"message" yaml:"message"`
}

// ResponseBuilder builds a Response, defaulting to status 200.
type ResponseBuilder struct {
	status  int
	message string
}

func NewResponseBuilder() *ResponseBuilder {
	return &ResponseBuilder{status: 200}
}

// ResponseOf is a 200 response carrying message.
func ResponseOf(message string) Response {
	return NewResponseBuilder().Message(message).Build()
}

func (b *ResponseBuilder) Status(status int) *ResponseBuilder {
	b.status = status
	return b
}

func (b *ResponseBuilder) Message(message string) *ResponseBuilder {
	b.message = message
	return b
}

func (b *ResponseBuilder) Build() Response {
	return Response{Status: b.status, Message: b.message}
}

// IContractService handles submitted contracts.
type IContractService interface {
	Handle(ctx context.Context, contract Contract) Response
}

// ContractService logs every access entry of a contract.
type ContractService struct {
	logger *log.Logger
}

func NewContractService(logger *log.Logger) *ContractService {
	return &ContractService{logger: logger.WithPrefix("contracts")}
}

const noAccessMessage = "No 'access' array provided."

func (s *ContractService) Handle(ctx context.Context, contract Contract) Response {
	if len(contract.Access) == 0 {
		s.logger.Warn(noAccessMessage, "contract", contract.Name)
		return NewResponseBuilder().Status(500).Message(noAccessMessage).Build()
	}

	for _, entry := range contract.Access {
		if ctx.Err() != nil {
			return NewResponseBuilder().Status(499).Message(ctx.Err().Error()).Build()
		}
		id := "<null>"
		if entry.ID != nil {
			id = *entry.ID
		}
		s.logger.Info("access entry", "timestamp", entry.Timestamp, "id", id)
	}

	return ResponseOf("Processed successfully")
}

package handlers

import (
	"github.com/opsfloor/licensehub/internal/app/service/license"
	"github.com/opsfloor/licensehub/internal/models"
	"github.com/opsfloor/licensehub/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

// RespLicense wraps a License in the standard envelope.
type RespLicense struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.License           `json:"data"`
}

// RespActivationInfo wraps an ActivationInfo in the standard envelope.
type RespActivationInfo struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    license.ActivationInfo   `json:"data"`
}

// RespPurchaseRecord wraps a PurchaseRecord in the standard envelope.
type RespPurchaseRecord struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.PurchaseRecord    `json:"data"`
}

// RespOrder wraps a PurchaseOrder in the standard envelope.
type RespOrder struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.PurchaseOrder     `json:"data"`
}

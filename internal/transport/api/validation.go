package api

import (
	"fmt"
)

func ValidateAddProduct(req *AddProductRequest) error {
	if req == nil {
		return fmt.Errorf("request is required")
	}
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if req.Price == "" {
		return fmt.Errorf("price is required")
	}
	return nil
}

func ValidateOnRefundComplete(req *OnRefundCompleteRequest) error {
	if req == nil {
		return fmt.Errorf("request is required")
	}
	if req.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if req.Settled && req.Reason != "" {
		return fmt.Errorf("reason is only valid for failed refunds")
	}
	return nil
}

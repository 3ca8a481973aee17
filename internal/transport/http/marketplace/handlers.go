package marketplace

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	contracts "github.com/murkotick/marketplace-service/internal/app/marketplace/contracts"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/dto"
	"github.com/murkotick/marketplace-service/internal/app/marketplace/usecases/place_order"
	"github.com/murkotick/marketplace-service/internal/transport/api"
)

func (s *Server) handleAddProduct(c *gin.Context) {
	var req api.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	if err := api.ValidateAddProduct(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	call, err := s.callContext(c)
	if err != nil {
		writeError(c, err)
		return
	}
	appReq, err := api.ToAddProductRequest(&req)
	if err != nil {
		writeError(c, err)
		return
	}

	p, err := s.commands.AddProduct.Execute(c.Request.Context(), call, appReq)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, &api.AddProductReply{Product: api.FromProduct(dto.FromProduct(p))})
}

func (s *Server) handleGetProducts(c *gin.Context) {
	page, err := queryInt(c, "page")
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	out, err := s.queries.GetProducts.Execute(c.Request.Context(), page, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromProductPage(out))
}

func (s *Server) handleGetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := s.queries.GetProduct.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, &api.GetProductReply{Product: api.FromProduct(p)})
}

func (s *Server) handlePlaceOrder(c *gin.Context) {
	var req api.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	call, err := s.callContext(c)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := s.commands.PlaceOrder.Execute(c.Request.Context(), call, place_order.Request{ProductID: req.ProductID})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, &api.PlaceOrderReply{
		Order:            api.FromOrder(dto.FromOrder(res.Order)),
		BatchID:          res.BatchID,
		PaymentScheduled: res.Submitted,
	})
}

func (s *Server) handleGetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	o, err := s.queries.GetOrder.Execute(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, &api.GetOrderReply{Order: api.FromOrder(o)})
}

func (s *Server) handleRefundOutcome(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req api.OnRefundCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}
	req.OrderID = id
	if err := api.ValidateOnRefundComplete(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	call, err := s.callContext(c)
	if err != nil {
		writeError(c, err)
		return
	}

	outcome := contracts.RefundOutcome{OrderID: req.OrderID, BatchID: req.BatchID, Settled: req.Settled, Reason: req.Reason}
	if err := s.commands.CompleteRefund.Execute(c.Request.Context(), call, outcome); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListUnsettled(c *gin.Context) {
	refunds, err := s.queries.Unsettled.Execute(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.FromUnsettled(refunds))
}

// pathID parses the :id segment, writing a 400 when it is not a number.
func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "id must be an unsigned integer")
		return 0, false
	}
	return id, true
}

// queryInt returns 0 for an absent parameter; paging treats 0 as "use the default".
func queryInt(c *gin.Context, key string) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return v, nil
}

package repo

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
)

// OrderSchemaVersion is written to schema_version for every order record.
const OrderSchemaVersion = 1

// Order field numbers. Never renumber.
const (
	orderFieldID        protowire.Number = 1
	orderFieldProductID protowire.Number = 2
	orderFieldBuyer     protowire.Number = 3
	orderFieldCreatedAt protowire.Number = 4
	orderFieldPrice     protowire.Number = 5
	orderFieldPaid      protowire.Number = 6
)

// OrderCodec is the keyedlog codec for orders.
type OrderCodec struct{}

func (OrderCodec) Version() int64 { return OrderSchemaVersion }

func (OrderCodec) Encode(o *domain.Order) ([]byte, error) {
	if o == nil {
		return nil, fmt.Errorf("order codec: nil order")
	}
	var b []byte
	b = appendVarintField(b, orderFieldID, o.ID())
	b = appendVarintField(b, orderFieldProductID, o.ProductID())
	b = appendStringField(b, orderFieldBuyer, o.Buyer())
	b = appendTimeField(b, orderFieldCreatedAt, o.CreatedAt())
	b = appendAmountField(b, orderFieldPrice, o.Price())
	b = appendAmountField(b, orderFieldPaid, o.Paid())
	return b, nil
}

func (OrderCodec) Decode(version int64, payload []byte) (*domain.Order, error) {
	if version != OrderSchemaVersion {
		return nil, fmt.Errorf("order codec: unsupported schema version %d", version)
	}

	var (
		id, productID uint64
		buyer         string
		price, paid   domain.Amount
		createdAt     time.Time
	)

	r := &fieldReader{b: payload}
	for {
		num, typ, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch num {
		case orderFieldID:
			id, err = r.varint(num, typ)
		case orderFieldProductID:
			productID, err = r.varint(num, typ)
		case orderFieldBuyer:
			buyer, err = r.str(num, typ)
		case orderFieldCreatedAt:
			createdAt, err = r.time(num, typ)
		case orderFieldPrice:
			price, err = r.amount(num, typ)
		case orderFieldPaid:
			paid, err = r.amount(num, typ)
		default:
			err = r.skip(num, typ)
		}
		if err != nil {
			return nil, fmt.Errorf("order codec: %w", err)
		}
	}

	return domain.ReconstructOrder(id, productID, buyer, price, paid, createdAt), nil
}

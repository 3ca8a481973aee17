package repo

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
)

// ProductSchemaVersion is written to schema_version for every product record.
const ProductSchemaVersion = 1

// Product field numbers. Never renumber.
const (
	productFieldID          protowire.Number = 1
	productFieldOwner       protowire.Number = 2
	productFieldName        protowire.Number = 3
	productFieldPrice       protowire.Number = 4
	productFieldCurrency    protowire.Number = 5
	productFieldDescription protowire.Number = 6
	productFieldOptions     protowire.Number = 7
	productFieldCreatedAt   protowire.Number = 8
)

// ProductCodec is the keyedlog codec for products.
type ProductCodec struct{}

func (ProductCodec) Version() int64 { return ProductSchemaVersion }

func (ProductCodec) Encode(p *domain.Product) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("product codec: nil product")
	}
	var b []byte
	b = appendVarintField(b, productFieldID, p.ID())
	b = appendStringField(b, productFieldOwner, p.Owner())
	b = appendStringField(b, productFieldName, p.Name())
	b = appendAmountField(b, productFieldPrice, p.Price())
	b = appendStringField(b, productFieldCurrency, p.Currency())
	b = appendStringField(b, productFieldDescription, p.Description())
	for _, opt := range p.Options() {
		b = protowire.AppendTag(b, productFieldOptions, protowire.BytesType)
		b = protowire.AppendString(b, opt)
	}
	b = appendTimeField(b, productFieldCreatedAt, p.CreatedAt())
	return b, nil
}

func (ProductCodec) Decode(version int64, payload []byte) (*domain.Product, error) {
	if version != ProductSchemaVersion {
		return nil, fmt.Errorf("product codec: unsupported schema version %d", version)
	}

	var (
		id        uint64
		owner     string
		name      string
		price     domain.Amount
		currency  string
		desc      string
		options   []string
		createdAt time.Time
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
		case productFieldID:
			id, err = r.varint(num, typ)
		case productFieldOwner:
			owner, err = r.str(num, typ)
		case productFieldName:
			name, err = r.str(num, typ)
		case productFieldPrice:
			price, err = r.amount(num, typ)
		case productFieldCurrency:
			currency, err = r.str(num, typ)
		case productFieldDescription:
			desc, err = r.str(num, typ)
		case productFieldOptions:
			var opt string
			opt, err = r.str(num, typ)
			options = append(options, opt)
		case productFieldCreatedAt:
			createdAt, err = r.time(num, typ)
		default:
			err = r.skip(num, typ)
		}
		if err != nil {
			return nil, fmt.Errorf("product codec: %w", err)
		}
	}

	return domain.ReconstructProduct(id, owner, name, price, currency, desc, options, createdAt), nil
}

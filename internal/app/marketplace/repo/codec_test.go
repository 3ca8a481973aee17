package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/murkotick/marketplace-service/internal/app/marketplace/domain"
)

var codecNow = time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)

func TestProductCodec_Fields(t *testing.T) {
	price, err := domain.ParseAmount("340282366920938463463374607431768211455")
	require.NoError(t, err)
	p := domain.ReconstructProduct(101, "alice.near", "Lamp", price, "NEAR", "desk lamp", []string{"warm", "cold"}, codecNow)

	b, err := ProductCodec{}.Encode(p)
	require.NoError(t, err)

	got, err := ProductCodec{}.Decode(ProductSchemaVersion, b)
	require.NoError(t, err)
	assert.Equal(t, p.ID(), got.ID())
	assert.Equal(t, p.Owner(), got.Owner())
	assert.Equal(t, p.Name(), got.Name())
	assert.True(t, p.Price().Equals(got.Price()))
	assert.Equal(t, p.Currency(), got.Currency())
	assert.Equal(t, p.Description(), got.Description())
	assert.Equal(t, p.Options(), got.Options())
	assert.True(t, codecNow.Equal(got.CreatedAt()))
}

func TestProductCodec_SkipsUnknownFields(t *testing.T) {
	p := domain.ReconstructProduct(7, "o", "n", domain.NewAmount(3), "NEAR", "", nil, codecNow)
	b, err := ProductCodec{}.Encode(p)
	require.NoError(t, err)

	// a field added by a newer writer
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "future")
	b = appendVarintField(b, 100, 12345)

	got, err := ProductCodec{}.Decode(ProductSchemaVersion, b)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.ID())
	assert.Equal(t, "3", got.Price().String())
}

func TestProductCodec_RejectsUnknownVersion(t *testing.T) {
	_, err := ProductCodec{}.Decode(ProductSchemaVersion+1, nil)
	assert.Error(t, err)
}

func TestProductCodec_RejectsWrongWireType(t *testing.T) {
	b := protowire.AppendTag(nil, productFieldID, protowire.BytesType)
	b = protowire.AppendString(b, "not a varint")
	_, err := ProductCodec{}.Decode(ProductSchemaVersion, b)
	assert.Error(t, err)
}

func TestOrderCodec_Fields(t *testing.T) {
	o := domain.ReconstructOrder(100, 101, "bob.near", domain.NewAmount(10), domain.NewAmount(25), codecNow)

	b, err := OrderCodec{}.Encode(o)
	require.NoError(t, err)

	got, err := OrderCodec{}.Decode(OrderSchemaVersion, b)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), got.ID())
	assert.Equal(t, uint64(101), got.ProductID())
	assert.Equal(t, "bob.near", got.Buyer())
	assert.Equal(t, "10", got.Price().String())
	assert.Equal(t, "25", got.Paid().String())
	assert.Equal(t, "15", got.Refund().String())
	assert.Equal(t, o.ReceiptKey(), got.ReceiptKey())
}

func TestOrderCodec_Truncated(t *testing.T) {
	o := domain.ReconstructOrder(100, 101, "bob.near", domain.NewAmount(10), domain.NewAmount(25), codecNow)
	b, err := OrderCodec{}.Encode(o)
	require.NoError(t, err)

	_, err = OrderCodec{}.Decode(OrderSchemaVersion, b[:len(b)-3])
	assert.Error(t, err)
}

package service

import (
	"context"
	"errors"
	"testing"

	"storevision/internal/dto"
	"storevision/internal/model"
	"storevision/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func carrito(lineas ...dto.ItemVentaRequest) dto.RegistrarVentaRequest {
	return dto.RegistrarVentaRequest{Items: lineas}
}

func linea(p model.Producto, cantidad int) dto.ItemVentaRequest {
	return dto.ItemVentaRequest{ProductoID: p.ID.String(), Cantidad: cantidad}
}

func TestRegistrarVenta_DescuentaStock(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	leche := e.crearProducto(t, "LAC001", 3800, 50, 10)

	resp, err := e.venta.RegistrarVenta(ctx, e.actorCajero(), carrito(linea(leche, 5)))
	require.NoError(t, err)

	assert.Equal(t, model.VentaCompletada, resp.Estado)
	assert.True(t, decimal.NewFromInt(19000).Equal(resp.Total), "total %s", resp.Total)
	require.Len(t, resp.Items, 1)
	assert.True(t, decimal.NewFromInt(3800).Equal(resp.Items[0].PrecioUnitario))
	assert.Equal(t, e.sucursal.ID.String(), resp.SucursalID)
	assert.Equal(t, 45, e.stock(t, leche.ID))

	ventaID := uuid.MustParse(resp.ID)
	movs, err := e.movimientos.FindByVentaID(ctx, ventaID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, model.MovimientoSalida, movs[0].Tipo)
	assert.Equal(t, 5, movs[0].Cantidad)
	assert.Equal(t, 50, movs[0].StockAnterior)
	assert.Equal(t, 45, movs[0].StockNuevo)
	assert.Equal(t, e.cajero.ID, movs[0].UsuarioID)

	regs := e.registrosDeTipo(t, model.AccionVenta)
	require.Len(t, regs, 1)
	require.NotNil(t, regs[0].UsuarioID)
	assert.Equal(t, e.cajero.ID, *regs[0].UsuarioID)
	require.NotNil(t, regs[0].IPAddress)
	assert.Equal(t, "10.0.0.2", *regs[0].IPAddress)

	assert.Equal(t, 1, e.notifier.total())
}

func TestRegistrarVenta_StockInsuficiente_NoEscribeNada(t *testing.T) {
	e := nuevoEntorno(t)
	queso := e.crearProducto(t, "LAC002", 12500, 3, 5)

	_, err := e.venta.RegistrarVenta(context.Background(), e.actorCajero(), carrito(linea(queso, 5)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStockInsuficiente)
	assert.Equal(t, KindConflict, KindOf(err))

	var se *StockInsuficienteError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, queso.ID, se.ProductoID)
	assert.Equal(t, 3, se.Disponible)
	assert.Equal(t, 5, se.Solicitado)

	assert.Equal(t, 3, e.stock(t, queso.ID))
	assert.Zero(t, e.contar(t, &model.Venta{}))
	assert.Zero(t, e.contar(t, &model.VentaItem{}))
	assert.Zero(t, e.contar(t, &model.MovimientoInventario{}))
	assert.Empty(t, e.registrosDeTipo(t, model.AccionVenta))
	assert.Zero(t, e.notifier.total())
}

// A failing second line must leave the first product untouched.
func TestRegistrarVenta_Atomica(t *testing.T) {
	e := nuevoEntorno(t)
	arroz := e.crearProducto(t, "GRA001", 4500, 40, 12)
	atun := e.crearProducto(t, "GRA003", 5800, 2, 15)

	_, err := e.venta.RegistrarVenta(context.Background(), e.actorCajero(),
		carrito(linea(arroz, 10), linea(atun, 3)))
	require.ErrorIs(t, err, ErrStockInsuficiente)

	assert.Equal(t, 40, e.stock(t, arroz.ID))
	assert.Equal(t, 2, e.stock(t, atun.ID))
	assert.Zero(t, e.contar(t, &model.MovimientoInventario{}))
	assert.Zero(t, e.contar(t, &model.Venta{}))
}

func TestRegistrarVenta_ProductoRepetidoSumaCantidades(t *testing.T) {
	e := nuevoEntorno(t)
	papas := e.crearProducto(t, "SNK001", 2200, 5, 2)

	_, err := e.venta.RegistrarVenta(context.Background(), e.actorCajero(),
		carrito(linea(papas, 3), linea(papas, 3)))
	require.ErrorIs(t, err, ErrStockInsuficiente)
	assert.Equal(t, 5, e.stock(t, papas.ID))

	resp, err := e.venta.RegistrarVenta(context.Background(), e.actorCajero(),
		carrito(linea(papas, 2), linea(papas, 3)))
	require.NoError(t, err)
	assert.Len(t, resp.Items, 2)
	assert.True(t, decimal.NewFromInt(11000).Equal(resp.Total))
	assert.Equal(t, 0, e.stock(t, papas.ID))
	assert.EqualValues(t, 2, e.contar(t, &model.MovimientoInventario{}))
}

func TestRegistrarVenta_ErroresDeValidacion(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	cafe := e.crearProducto(t, "BEB002", 12500, 30, 10)
	inactivo := e.crearProducto(t, "BEB009", 1000, 30, 10)
	_, err := e.productos.DesactivarTx(e.db, inactivo.ID)
	require.NoError(t, err)

	casos := []struct {
		nombre string
		req    dto.RegistrarVentaRequest
		want   error
		kind   Kind
	}{
		{"carrito vacío", carrito(), ErrCarritoVacio, KindValidation},
		{"cantidad cero", carrito(linea(cafe, 0)), ErrCantidadInvalida, KindValidation},
		{"cantidad negativa", carrito(linea(cafe, -2)), ErrCantidadInvalida, KindValidation},
		{"id inválido", carrito(dto.ItemVentaRequest{ProductoID: "xx", Cantidad: 1}), ErrIdentificadorInvalido, KindValidation},
		{"producto inexistente", carrito(dto.ItemVentaRequest{ProductoID: uuid.NewString(), Cantidad: 1}), ErrProductoNoEncontrado, KindNotFound},
		{"producto inactivo", carrito(linea(cafe, 1), linea(inactivo, 1)), ErrProductoInactivo, KindConflict},
	}
	for _, tc := range casos {
		t.Run(tc.nombre, func(t *testing.T) {
			_, err := e.venta.RegistrarVenta(ctx, e.actorCajero(), tc.req)
			require.ErrorIs(t, err, tc.want)
			assert.Equal(t, tc.kind, KindOf(err))
		})
	}

	assert.Equal(t, 30, e.stock(t, cafe.ID))
	assert.Zero(t, e.contar(t, &model.Venta{}))
}

// A later price change must not alter what the sale recorded.
func TestRegistrarVenta_PrecioCongelado(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	coca := e.crearProducto(t, "BEB001", 5800, 65, 20)

	resp, err := e.venta.RegistrarVenta(ctx, e.actorCajero(), carrito(linea(coca, 2)))
	require.NoError(t, err)

	require.NoError(t, e.db.Model(&model.Producto{}).Where("id = ?", coca.ID).
		Update("precio_venta", decimal.NewFromInt(6500)).Error)

	got, err := e.venta.ObtenerVenta(ctx, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5800).Equal(got.Items[0].PrecioUnitario))
	assert.True(t, decimal.NewFromInt(11600).Equal(got.Total))
	assert.Equal(t, "Carlos Rodríguez", got.Usuario)
}

func TestAnularVenta_RestauraStock(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	huevos := e.crearProducto(t, "LAC003", 18500, 30, 8)
	jabon := e.crearProducto(t, "ASE001", 7500, 60, 20)

	venta, err := e.venta.RegistrarVenta(ctx, e.actorCajero(), carrito(linea(huevos, 2), linea(jabon, 4)))
	require.NoError(t, err)
	assert.Equal(t, 28, e.stock(t, huevos.ID))
	assert.Equal(t, 56, e.stock(t, jabon.ID))

	id := uuid.MustParse(venta.ID)
	anulada, err := e.venta.AnularVenta(ctx, e.actorAdmin(), id, "Cliente devolvió")
	require.NoError(t, err)
	assert.Equal(t, model.VentaAnulada, anulada.Estado)
	require.NotNil(t, anulada.MotivoAnulacion)
	assert.Equal(t, "Cliente devolvió", *anulada.MotivoAnulacion)
	assert.NotNil(t, anulada.FechaAnulacion)

	assert.Equal(t, 30, e.stock(t, huevos.ID))
	assert.Equal(t, 60, e.stock(t, jabon.ID))

	movs, err := e.movimientos.FindByVentaID(ctx, id)
	require.NoError(t, err)
	entradas := 0
	for _, m := range movs {
		if m.Tipo == model.MovimientoEntrada {
			entradas++
			assert.Contains(t, m.Motivo, "Cliente devolvió")
			assert.Equal(t, e.admin.ID, m.UsuarioID)
		}
	}
	assert.Equal(t, 2, entradas)
	assert.Len(t, e.registrosDeTipo(t, model.AccionAnulacion), 1)

	// Second void is rejected and changes nothing.
	_, err = e.venta.AnularVenta(ctx, e.actorAdmin(), id, "otra vez")
	require.ErrorIs(t, err, ErrVentaYaAnulada)
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, 30, e.stock(t, huevos.ID))
	assert.EqualValues(t, 4, e.contar(t, &model.MovimientoInventario{}))
	assert.Len(t, e.registrosDeTipo(t, model.AccionAnulacion), 1)
}

func TestAnularVenta_Errores(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	_, err := e.venta.AnularVenta(ctx, e.actorAdmin(), uuid.New(), "motivo")
	require.ErrorIs(t, err, ErrVentaNoEncontrada)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = e.venta.AnularVenta(ctx, e.actorAdmin(), uuid.New(), "   ")
	require.ErrorIs(t, err, ErrMotivoRequerido)
}

// Stock always equals its starting value plus entradas minus salidas.
func TestConservacionDeStock(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	a := e.crearProducto(t, "CNS001", 1000, 20, 2)
	b := e.crearProducto(t, "CNS002", 2000, 15, 2)

	var ventas []uuid.UUID
	for i := 0; i < 4; i++ {
		resp, err := e.venta.RegistrarVenta(ctx, e.actorCajero(), carrito(linea(a, 2), linea(b, 1)))
		require.NoError(t, err)
		ventas = append(ventas, uuid.MustParse(resp.ID))
	}
	_, err := e.venta.AnularVenta(ctx, e.actorAdmin(), ventas[1], "error de digitación")
	require.NoError(t, err)
	_, err = e.inventario.RegistrarMovimiento(ctx, e.actorAdmin(), dto.RegistrarMovimientoRequest{
		ProductoID: a.ID.String(), Tipo: model.MovimientoEntrada, Cantidad: 7, Motivo: "Compra proveedor",
	})
	require.NoError(t, err)

	for _, p := range []model.Producto{a, b} {
		movs, _, err := e.movimientos.List(ctx, repository.MovimientoFilter{ProductoID: &p.ID, Page: 1, Limit: 100})
		require.NoError(t, err)
		neto := 0
		for _, m := range movs {
			neto += m.Delta()
			assert.Equal(t, m.StockAnterior+m.Delta(), m.StockNuevo)
		}
		assert.Equal(t, p.StockActual+neto, e.stock(t, p.ID), "producto %s", p.Codigo)
	}
	assert.Equal(t, 20-6+7, e.stock(t, a.ID))
	assert.Equal(t, 15-3, e.stock(t, b.ID))
}

func TestListVentasYConsolidado(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p := e.crearProducto(t, "LST001", 1000, 100, 5)

	v1, err := e.venta.RegistrarVenta(ctx, e.actorCajero(), carrito(linea(p, 2)))
	require.NoError(t, err)
	_, err = e.venta.RegistrarVenta(ctx, e.actorAdmin(), carrito(linea(p, 3)))
	require.NoError(t, err)
	_, err = e.venta.AnularVenta(ctx, e.actorAdmin(), uuid.MustParse(v1.ID), "prueba")
	require.NoError(t, err)

	todas, err := e.venta.ListVentas(ctx, dto.VentaFilter{Estado: "all", Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 2, todas.Total)

	anuladas, err := e.venta.ListVentas(ctx, dto.VentaFilter{Estado: model.VentaAnulada, Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, anuladas.Data, 1)
	assert.Equal(t, v1.ID, anuladas.Data[0].ID)

	cons, err := e.venta.ConsolidarVentasDiarias(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, cons.CantidadVentas)
	assert.EqualValues(t, 1, cons.VentasAnuladas)
	assert.True(t, decimal.NewFromInt(3000).Equal(cons.TotalVendido), "total %s", cons.TotalVendido)
	assert.EqualValues(t, 3, cons.UnidadesVendidas)
	require.Len(t, cons.PorCajero, 1)
	assert.Equal(t, "María González", cons.PorCajero[0].Nombre)

	_, err = e.venta.ConsolidarVentasDiarias(ctx, "15/10/2026")
	require.ErrorIs(t, err, ErrRangoFechasInvalido)
}

func TestTicketPDF(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()
	p := e.crearProducto(t, "TCK001", 2500, 10, 1)

	resp, err := e.venta.RegistrarVenta(ctx, e.actorCajero(), carrito(linea(p, 2)))
	require.NoError(t, err)

	pdf, err := e.venta.TicketPDF(ctx, uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))

	_, err = e.venta.TicketPDF(ctx, uuid.New())
	require.ErrorIs(t, err, ErrVentaNoEncontrada)
}

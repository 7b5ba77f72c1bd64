package bridge

import (
	"context"

	"github.com/ibs-source/rc-bridge/internal/device"
	"github.com/ibs-source/rc-bridge/internal/message"
	"github.com/ibs-source/rc-bridge/internal/rpc"
	"github.com/ibs-source/rc-bridge/internal/telemetry"
)

func (b *Bridge) listApplications(ctx context.Context, _ rpc.Request) (any, error) {
	apps, err := b.Device.ListApplications(ctx)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []device.Application{}
	}
	return applicationsResponse{Envelope: message.OK(), Applications: apps}, nil
}

func (b *Bridge) launchApplication(ctx context.Context, req rpc.Request) (any, error) {
	var r launchRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	if err := requireAppID(r.AppID); err != nil {
		return nil, err
	}
	if err := b.Device.LaunchApplication(ctx, r.AppID, r.Parameters); err != nil {
		return nil, err
	}
	return message.OK(), nil
}

func (b *Bridge) exitApplication(ctx context.Context, req rpc.Request) (any, error) {
	var r appRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	if err := requireAppID(r.AppID); err != nil {
		return nil, err
	}
	if err := b.Device.ExitApplication(ctx, r.AppID); err != nil {
		return nil, err
	}
	return message.OK(), nil
}

func (b *Bridge) applicationState(ctx context.Context, req rpc.Request) (any, error) {
	var r appRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	if err := requireAppID(r.AppID); err != nil {
		return nil, err
	}
	state, err := b.Device.ApplicationState(ctx, r.AppID)
	if err != nil {
		return nil, err
	}
	return stateResponse{Envelope: message.OK(), AppID: r.AppID, State: state}, nil
}

func (b *Bridge) restart(ctx context.Context, _ rpc.Request) (any, error) {
	if err := b.Device.Restart(ctx); err != nil {
		return nil, err
	}
	return message.OK(), nil
}

func (b *Bridge) deviceInfo(ctx context.Context, _ rpc.Request) (any, error) {
	info, err := b.Device.Info(ctx)
	if err != nil {
		return nil, err
	}
	return infoResponse{Envelope: message.OK(), Info: info}, nil
}

func (b *Bridge) health(ctx context.Context, _ rpc.Request) (any, error) {
	h, err := b.Device.Health(ctx)
	if err != nil {
		return nil, err
	}
	if h.Checks == nil {
		h.Checks = map[string]string{}
	}
	return healthResponse{Envelope: message.OK(), Health: h}, nil
}

func (b *Bridge) pressKey(ctx context.Context, req rpc.Request) (any, error) {
	var r keyRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	key, err := device.ParseKey(r.Key)
	if err != nil {
		return nil, err
	}
	if err := b.Device.PressKey(ctx, key); err != nil {
		return nil, err
	}
	return message.OK(), nil
}

func (b *Bridge) longPressKey(ctx context.Context, req rpc.Request) (any, error) {
	var r keyRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	key, err := device.ParseKey(r.Key)
	if err != nil {
		return nil, err
	}
	d, err := r.duration()
	if err != nil {
		return nil, err
	}
	if err := b.Device.LongPressKey(ctx, key, d); err != nil {
		return nil, err
	}
	return message.OK(), nil
}

func (b *Bridge) setLanguage(ctx context.Context, req rpc.Request) (any, error) {
	var r languageRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	if r.Language == "" {
		return nil, message.Validation("language is required")
	}
	if err := b.Device.SetLanguage(ctx, r.Language); err != nil {
		return nil, err
	}
	return message.OK(), nil
}

func (b *Bridge) getLanguage(ctx context.Context, _ rpc.Request) (any, error) {
	lang, err := b.Device.Language(ctx)
	if err != nil {
		return nil, err
	}
	return languageResponse{Envelope: message.OK(), Language: lang}, nil
}

func (b *Bridge) startDeviceTelemetry(_ context.Context, req rpc.Request) (any, error) {
	var r telemetryRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	freq, err := r.frequency()
	if err != nil {
		return nil, err
	}
	producer := func(ctx context.Context) (any, error) {
		return b.Device.DeviceMetrics(ctx)
	}
	if err := b.Sessions.Start(telemetry.DeviceKey(), freq, producer); err != nil {
		return nil, err
	}
	return message.OK(), nil
}

func (b *Bridge) stopDeviceTelemetry(_ context.Context, _ rpc.Request) (any, error) {
	if err := b.Sessions.Stop(telemetry.DeviceKey()); err != nil {
		return nil, err
	}
	return message.OK(), nil
}

// startApplicationTelemetry checks the application with a state query first
// so unknown ids and missing capabilities are answered instead of starting a
// session that can only fail.
func (b *Bridge) startApplicationTelemetry(ctx context.Context, req rpc.Request) (any, error) {
	var r telemetryRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	if err := requireAppID(r.AppID); err != nil {
		return nil, err
	}
	freq, err := r.frequency()
	if err != nil {
		return nil, err
	}
	if _, err := b.Device.ApplicationState(ctx, r.AppID); err != nil {
		return nil, err
	}

	appID := r.AppID
	producer := func(ctx context.Context) (any, error) {
		return b.Device.ApplicationMetrics(ctx, appID)
	}
	if err := b.Sessions.Start(telemetry.AppKey(appID), freq, producer); err != nil {
		return nil, err
	}
	return message.OK(), nil
}

func (b *Bridge) stopApplicationTelemetry(_ context.Context, req rpc.Request) (any, error) {
	var r appRequest
	if err := decode(req, &r); err != nil {
		return nil, err
	}
	if err := requireAppID(r.AppID); err != nil {
		return nil, err
	}
	if err := b.Sessions.Stop(telemetry.AppKey(r.AppID)); err != nil {
		return nil, err
	}
	return message.OK(), nil
}

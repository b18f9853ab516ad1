package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"healthvault-data/internal/domain"
	"healthvault-data/internal/service"
	"healthvault-data/pkg/mqttclient"
)

// VitalsBroker 家用设备体征数据 MQTT 接入模块
// 主题格式：healthvault/vitals/{user_id}，payload 为 deviceVitalsMessage
type VitalsBroker struct {
	monitoringService service.MonitoringService
	client            *mqttclient.Client
	topic             string
	qos               byte
	logger            *zap.Logger
}

// NewVitalsBroker 创建体征数据 Broker
func NewVitalsBroker(
	monitoringService service.MonitoringService,
	client *mqttclient.Client,
	topic string,
	qos byte,
	logger *zap.Logger,
) *VitalsBroker {
	return &VitalsBroker{
		monitoringService: monitoringService,
		client:            client,
		topic:             topic,
		qos:               qos,
		logger:            logger,
	}
}

// deviceVitalsMessage 设备上报消息格式
type deviceVitalsMessage struct {
	UserID           string             `json:"userId"` // 为空时从主题解析
	ObservedOn       string             `json:"observedOn"`
	Timestamp        int64              `json:"timestamp"` // observedOn 缺失时按设备时间取日期
	Vitals           map[string]float64 `json:"vitals"`
	Symptoms         []string           `json:"symptoms"`
	OverallCondition int                `json:"overallCondition"`
}

// Start 订阅体征主题
func (b *VitalsBroker) Start(ctx context.Context) error {
	if err := b.client.Subscribe(b.topic, b.qos, b.HandleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", b.topic, err)
	}
	b.logger.Info("Vitals MQTT broker started", zap.String("topic", b.topic))
	return nil
}

// Stop 取消订阅
func (b *VitalsBroker) Stop(ctx context.Context) error {
	if err := b.client.Unsubscribe(b.topic); err != nil {
		b.logger.Error("Failed to unsubscribe", zap.Error(err))
		return err
	}
	b.logger.Info("Vitals MQTT broker stopped")
	return nil
}

// HandleMessage 处理单条设备消息
// 解析失败只记日志并丢弃，不影响后续消息
func (b *VitalsBroker) HandleMessage(topic string, payload []byte) error {
	var msg deviceVitalsMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		b.logger.Warn("Discarding malformed vitals message",
			zap.String("topic", topic), zap.Error(err))
		return nil
	}

	userID := msg.UserID
	if userID == "" {
		userID = userIDFromTopic(topic)
	}
	if userID == "" {
		b.logger.Warn("Discarding vitals message without user id",
			zap.String("topic", topic))
		return nil
	}

	observedOn, err := resolveObservedOn(&msg)
	if err != nil {
		b.logger.Warn("Discarding vitals message with invalid date",
			zap.String("topic", topic), zap.Error(err))
		return nil
	}

	overallCondition := msg.OverallCondition
	if overallCondition == 0 {
		// 设备不上报总体评分时取中间值
		overallCondition = 3
	}

	vitals := msg.Vitals
	if vitals == nil {
		vitals = map[string]float64{}
	}
	vitalsJSON, err := json.Marshal(vitals)
	if err != nil {
		return fmt.Errorf("failed to marshal vitals: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = b.monitoringService.RecordObservation(ctx, userID, &domain.VitalSignRecord{
		ObservedOn:       observedOn,
		Vitals:           vitalsJSON,
		Symptoms:         msg.Symptoms,
		OverallCondition: overallCondition,
		Source:           "device",
	})
	if err != nil {
		b.logger.Error("Failed to store device observation",
			zap.String("user_id", userID),
			zap.String("topic", topic),
			zap.Error(err),
		)
		return err
	}

	b.logger.Debug("Device observation stored",
		zap.String("user_id", userID),
		zap.Int("vital_count", len(vitals)),
	)
	return nil
}

// userIDFromTopic healthvault/vitals/{user_id} → user_id
func userIDFromTopic(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) < 3 {
		return ""
	}
	return parts[len(parts)-1]
}

// resolveObservedOn 观察日期解析优先级：observedOn 字段 > timestamp > 当天
func resolveObservedOn(msg *deviceVitalsMessage) (time.Time, error) {
	if msg.ObservedOn != "" {
		return time.Parse("2006-01-02", msg.ObservedOn)
	}
	if msg.Timestamp > 0 {
		t := time.Unix(msg.Timestamp, 0).UTC()
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
}

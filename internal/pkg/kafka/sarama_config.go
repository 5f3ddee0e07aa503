package kafka

import (
	"Lumen/internal/api/config"
	"time"

	"github.com/IBM/sarama"
)

const clientID = "lumen-analytics"

// newSaramaConfig 埋点消费者的 sarama 配置，位点在批处理完成后手动提交
func newSaramaConfig(kafkaCfg config.KafkaConfig) *sarama.Config {
	c := sarama.NewConfig()
	c.ClientID = clientID

	if kafkaCfg.Sasl.Enable {
		c.Net.SASL.Enable = true
		c.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		c.Net.SASL.User = kafkaCfg.Sasl.Username
		c.Net.SASL.Password = kafkaCfg.Sasl.Password
	}

	c.Consumer.Return.Errors = true
	// 新消费组默认从最早位置读，避免部署前已产生的埋点事件被跳过
	c.Consumer.Offsets.Initial = sarama.OffsetOldest
	if kafkaCfg.Consumer.InitialOffset == config.OffsetNewest {
		c.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	// 只拉取订阅的埋点主题的元数据
	c.Metadata.Full = false

	c.Consumer.Group.Session.Timeout = time.Duration(kafkaCfg.Consumer.SessionTimeout) * time.Second
	c.Consumer.Group.Heartbeat.Interval = time.Duration(kafkaCfg.Consumer.HeartbeatInterval) * time.Second
	c.Consumer.Group.Rebalance.Timeout = time.Duration(kafkaCfg.Consumer.RebalanceTimeout) * time.Second
	c.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategySticky()}
	c.Consumer.Offsets.AutoCommit.Enable = false
	c.Consumer.MaxProcessingTime = time.Duration(kafkaCfg.Consumer.MaxProcessingTime) * time.Second

	return c
}

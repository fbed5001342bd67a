// Package amqp provides a RabbitMQ producer processor: a pipeline stage that
// publishes the exchange's In body to an AMQP exchange and routing key. The
// routing machinery treats it as any other opaque stage.
package amqp
